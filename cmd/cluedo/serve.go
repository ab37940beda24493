package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cluedo-custom/internal/api"
	"cluedo-custom/internal/config"
	"cluedo-custom/internal/events"
	"cluedo-custom/internal/game"
	"cluedo-custom/internal/manager"
	"cluedo-custom/internal/narrator"
	"cluedo-custom/internal/store"
)

func newServeCmd(cfg *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyEnv(cmd.Flags(), config.NewViper()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), *cfg)
		},
	}
	cfg.RegisterServerFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, cfg config.Settings) error {
	log := newLogger(cfg.LogLevel)

	themes, err := config.LoadThemes(cfg.ThemesFile)
	if err != nil {
		return fmt.Errorf("failed to load themes: %w", err)
	}

	st, err := store.Open(cfg.StoreBackend, cfg.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	defer st.Close()

	randSource := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := game.NewEngine(log, randSource, game.NewRandomChooser(randSource))
	bus := events.NewManager()

	mgr := manager.New(engine, st, bus, themes, manager.LimitsFrom(cfg), log)
	log.Infof("Loaded %d games from %s", mgr.Load(), cfg.StorePath())

	hub := api.NewHub(log)
	bus.Subscribe(hub)

	n := narrator.New(cfg, log)
	narration := narrator.NewListener(n, mgr, cfg.NarrationTimeout, log)
	bus.Subscribe(narration)
	defer narration.Wait()

	bus.Subscribe(events.ListenerFunc(func(e events.Event) {
		log.WithFields(logrus.Fields{"game": e.GameCode(), "event": events.Name(e)}).Debug("Event published")
	}))

	return api.NewServer(mgr, hub, cfg, log).Serve(ctx)
}
