// Package main is the entry point for the wordevents command.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/wordevents/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// ConfigEnv names the environment variable consulted when --config is not
// given.
const ConfigEnv = "WORDEVENTS_CONFIG"

var (
	configFile string
	debugMode  bool
	logLevel   string
	accept     AcceptPreset
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wordevents",
		Short: "Turn keystrokes into word events",
		Long: `wordevents groups keystrokes typed in quick succession into words and
runs the action bound to each word in the configuration or a Lua script.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "configuration file (TOML or YAML); defaults to $"+ConfigEnv)
	flags.BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.Var(&accept, "accept", fmt.Sprintf("keystrokes that form words, one of %v", acceptPresets()))

	root.AddCommand(
		newRunCommand(),
		newResolveCommand(),
		newReplayCommand(),
		newWordsCommand(),
		newVersionCommand(),
	)
	return root
}

// appOptions collects the persistent flags into application options.
func appOptions(cmd *cobra.Command) app.Options {
	path := configFile
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	return app.Options{
		ConfigPath: path,
		LogLevel:   logLevel,
		Debug:      debugMode,
		Accept:     accept.String(),
		Output:     cmd.OutOrStdout(),
	}
}

// newApp builds the application for a subcommand.
func newApp(cmd *cobra.Command) (*app.Application, error) {
	a, err := app.New(appOptions(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wordevents %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}

// ignoreQuit maps a normal quit to success.
func ignoreQuit(err error) error {
	if errors.Is(err, app.ErrQuit) {
		return nil
	}
	return err
}
