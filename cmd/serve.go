package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"envsync/internal/daemon"
	"envsync/internal/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sync status and history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		srv := daemon.NewServer(cfg.DaemonPort)
		srv.Start()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Stop(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
