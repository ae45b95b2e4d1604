/*
Copyright © 2026 Todd Leonhardt
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"github.com/toddleonhardt/go-tdlchar/internal/client"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display device diagnostics counters",
	Long: `Display the device diagnostics counters as a table.

The counters are served on a dedicated connection that bypasses the session
gate, so stats work even while another client holds the device.

Example usage:
  tdlchar stats
  tdlchar stats --socket /run/tdlchar.sock`,
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := client.Stat(socketPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching stats: %v\n", err)
			os.Exit(1)
		}

		columns := []table.Column{
			table.NewColumn("counter", "Counter", 22),
			table.NewColumn("value", "Value", 14),
		}

		rows := []table.Row{
			table.NewRow(table.RowData{"counter": "Opens", "value": stats.Opens}),
			table.NewRow(table.RowData{"counter": "Busy rejections", "value": stats.BusyRejections}),
			table.NewRow(table.RowData{"counter": "Messages written", "value": stats.MessagesWritten}),
			table.NewRow(table.RowData{"counter": "Messages read", "value": stats.MessagesRead}),
			table.NewRow(table.RowData{"counter": "Bytes written", "value": stats.BytesWritten}),
			table.NewRow(table.RowData{"counter": "Bytes read", "value": stats.BytesRead}),
		}

		t := table.New(columns).
			WithRows(rows).
			BorderRounded().
			WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left))

		fmt.Println(t.View())
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
