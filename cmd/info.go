/*
Copyright © 2026 Todd Leonhardt
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toddleonhardt/go-tdlchar/internal/client"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display daemon connection information",
	Long: `Display where the device daemon is expected and whether it answers.

Example usage:
  tdlchar info
  tdlchar info --socket /run/tdlchar.sock`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Device Information\n\n")
		fmt.Printf("  Socket:      %s\n", socketPath())
		if cfg := viper.ConfigFileUsed(); cfg != "" {
			fmt.Printf("  Config file: %s\n", cfg)
		}

		stats, err := client.Stat(socketPath())
		if err != nil {
			fmt.Printf("  Daemon:      not reachable (%v)\n", err)
			return
		}
		fmt.Printf("  Daemon:      running\n")
		fmt.Printf("  Opens:       %d\n", stats.Opens)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
