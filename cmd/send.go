/*
Copyright © 2026 Todd Leonhardt
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toddleonhardt/go-tdlchar/internal/client"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data]",
	Short: "Write a message to the device",
	Long: `Open a device session and write a message. Data can be provided as:
- Command line argument: tdlchar send "Hello Todd"
- From stdin (pipe): echo "hello" | tdlchar send
- Interactive mode: tdlchar send (prompts for input)

The device stores the message uppercased until someone reads it; a new write
replaces an unread message. With --read-back the command immediately reads
the transformed message back, mirroring the classic device test program.

Example usage:
  tdlchar send "Hello Todd"
  tdlchar send "Hello Todd" --read-back
  tdlchar send --hex "48656c6c6f"
  echo "hello" | tdlchar send`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data string

		if len(args) == 1 {
			data = args[0]
		} else {
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				// No pipe input, use interactive mode
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		}

		hexMode, _ := cmd.Flags().GetBool("hex")
		readBack, _ := cmd.Flags().GetBool("read-back")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if hexMode {
			decoded, err := parseHexInput(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			data = string(decoded)
		}

		if err := sendData(data, readBack, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g. '48656c6c6f' for 'Hello')")
	sendCmd.Flags().BoolP("read-back", "r", false, "Read the transformed message back after writing")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for each device operation")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Type in a short string to send to the device: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func sendData(data string, readBack bool, timeout time.Duration) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), socketPath())

	sess, err := client.Open(socketPath(), timeout)
	if err != nil {
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}
	defer sess.Close()

	fmt.Printf("%s Session open\n", successStyle.Render("✓"))

	n, err := sess.Write([]byte(data))
	if err != nil {
		return fmt.Errorf("%s failed to write message: %v", errorStyle.Render("✗"), err)
	}
	fmt.Printf("%s Wrote %d bytes\n", successStyle.Render("✓"), n)

	if readBack {
		msg, err := sess.Read(256)
		if err != nil {
			return fmt.Errorf("%s failed to read message: %v", errorStyle.Render("✗"), err)
		}
		fmt.Printf("%s Received: [%s]\n", infoStyle.Render("📥"), string(msg))
	}

	return nil
}
