package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cluedo-custom/internal/cli"
	"cluedo-custom/internal/config"
)

func newPlayCmd(cfg *config.Settings) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play on a game server from the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyEnv(cmd.Flags(), config.NewViper()); err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)

			line := cli.NewLiner()
			defer line.Close()

			randSource := rand.New(rand.NewSource(time.Now().UnixNano()))
			ui := cli.NewCLI(log, line, os.Stdout, cli.NewClient(server), randSource)
			return ui.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:7860", "URL of the game server (env: CLUEDO_SERVER)")
	return cmd
}
