/*
Copyright © 2026 Todd Leonhardt
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tdlchar "github.com/toddleonhardt/go-tdlchar"
	"github.com/toddleonhardt/go-tdlchar/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tdlchar device daemon",
	Long: `Run the device daemon on a unix domain socket.

The daemon owns the single device instance. Each client connection maps to
one device session: while a session is active every other connection is
refused with a busy error, and a client that disconnects without closing has
its session released automatically.

Example usage:
  tdlchar serve
  tdlchar serve --socket /run/tdlchar.sock --capacity 512
  tdlchar serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		capacity := viper.GetInt("capacity")
		levelName, _ := cmd.Flags().GetString("log-level")

		level, err := log.ParseLevel(levelName)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", levelName, err)
		}
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          "tdlchar",
		})

		dev, err := tdlchar.NewDevice(
			tdlchar.WithCapacity(capacity),
			tdlchar.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		defer dev.Close()

		srv := server.New(dev, socketPath(), logger)
		if err := srv.Listen(); err != nil {
			return err
		}
		defer os.Remove(srv.SocketPath())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := srv.Serve(ctx); err != nil && err != ctx.Err() {
			return err
		}
		logger.Info("daemon stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("capacity", "c", tdlchar.DefaultCapacity, "message buffer size in bytes")
	serveCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")
	viper.BindPFlag("capacity", serveCmd.Flags().Lookup("capacity"))
}
