/*
Copyright © 2026 Todd Leonhardt
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tdlchar",
	Short: "A single-session uppercase message device",
	Long: `tdlchar serves and drives a classic character device reimplemented in Go:
one exclusive session at a time, a 256-byte message store, and an uppercase
transform applied to everything written.

Run the daemon, then talk to it:

  tdlchar serve &
  tdlchar send "Hello Todd" --read-back
  tdlchar stats

The device refuses a second concurrent session with a busy error instead of
blocking, exactly like its kernel-module ancestor.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tdlchar.yaml)")
	rootCmd.PersistentFlags().StringP("socket", "s", "/tmp/tdlchar.sock", "unix socket path of the device daemon")
	viper.BindPFlag("socket", rootCmd.PersistentFlags().Lookup("socket"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tdlchar")
	}

	viper.SetEnvPrefix("tdlchar")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// socketPath resolves the daemon socket from flag, env or config file.
func socketPath() string {
	return viper.GetString("socket")
}
