// Package main implements the taskline CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taskline:", err)
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var (
	flagConfig   string
	flagDB       string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "taskline",
	Short: "A day timeline that keeps tasks from overlapping",
	Long: `taskline keeps a day of tasks on a timeline, shows the free time between
them and pushes later tasks back when one is moved or focused.

Run without a subcommand to open the interactive timeline.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default $XDG_CONFIG_HOME/taskline/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

func runRoot(cmd *cobra.Command, args []string) error {
	if isTerminal(os.Stdout) {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		return a.runTUI()
	}
	return withApp(func(a *app, _ []string) error {
		return a.printDay(a.today())
	})(cmd, args)
}
