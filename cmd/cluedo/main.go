package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cluedo-custom/internal/config"
)

const releaseVersion = "1.0.0"

func main() {
	// A missing .env is fine; a broken one is worth a warning.
	if err := config.LoadDotEnv(); err != nil {
		logrus.Warnf("Could not load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}
}

// newLogger builds the logger shared by every component.
func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: true})
	return log
}

func newRootCmd() *cobra.Command {
	cfg := config.Defaults()

	cmd := &cobra.Command{
		Use:     "cluedo",
		Short:   "Custom Cluedo: a game server and its terminal client.",
		Version: releaseVersion,
		Args:    cobra.NoArgs,
	}
	cfg.RegisterLogFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(&cfg), newPlayCmd(&cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("cluedo v{{.Version}}\n")
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
