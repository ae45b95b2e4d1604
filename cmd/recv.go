/*
Copyright © 2026 Todd Leonhardt
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toddleonhardt/go-tdlchar/internal/client"
)

// recvCmd represents the recv command
var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Read the stored message from the device",
	Long: `Open a device session, read whatever message is stored, and print it.

Reading drains the store: a second recv before the next write prints nothing.
A message left unread by a previous session is still available here, since
releasing the session does not clear the buffer.

Example usage:
  tdlchar recv
  tdlchar recv --hex
  tdlchar recv --capacity 64`,
	Run: func(cmd *cobra.Command, args []string) {
		capacity, _ := cmd.Flags().GetInt("capacity")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if err := recvData(capacity, hexMode, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(recvCmd)

	recvCmd.Flags().IntP("capacity", "c", 256, "Maximum number of bytes to read")
	recvCmd.Flags().BoolP("hex", "x", false, "Print the message as hexadecimal")
	recvCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for each device operation")
}

func recvData(capacity int, hexMode bool, timeout time.Duration) error {
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Faint(true)

	sess, err := client.Open(socketPath(), timeout)
	if err != nil {
		return err
	}
	defer sess.Close()

	msg, err := sess.Read(capacity)
	if err != nil {
		return fmt.Errorf("failed to read message: %v", err)
	}

	if len(msg) == 0 {
		fmt.Println(dimStyle.Render("(store empty)"))
		return nil
	}

	if hexMode {
		fmt.Printf("% X\n", msg)
	} else {
		fmt.Println(string(msg))
	}
	return nil
}
