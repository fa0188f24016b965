// Package cli provides the commands of the functic tool.
package cli

import (
	"fmt"

	"github.com/effective-security/functic/callbacks"
	"github.com/effective-security/functic/config"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic", "cli")

// NewRootCmd returns the functic command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:          "functic",
		Short:        "Functic serves typed functions as OpenAI function tools",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogger(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "Path to the settings file: YAML, JSON or TOML")
	root.PersistentFlags().String("functions", "", "Function providers to load, separated by comma or semicolon")
	root.PersistentFlags().Bool("verbose", false, "Enable verbose/debug logging")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("functic version %s\n", version))

	root.AddCommand(NewServeCmd())
	root.AddCommand(NewFunctionsCmd())
	root.AddCommand(NewAssistantCmd())
	return root
}

func setupLogger(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	xlog.SetFormatter(xlog.NewStringFormatter(cmd.ErrOrStderr()))
	if verbose {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}
}

// loadSettings loads the settings, the --functions flag overrides the providers.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	file, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(file)
	if err != nil {
		return nil, exitError(exitInput, "loading settings: %v", err)
	}
	if functions, _ := cmd.Flags().GetString("functions"); functions != "" {
		settings.Functions = config.SplitFunctions(functions)
	}
	return settings, nil
}

// loadRegistry returns the registry with the functions of the settings.
func loadRegistry(settings *config.Settings, cb tools.Callback) (*tools.Registry, error) {
	r := tools.NewRegistry()
	if cb != nil {
		r.WithCallback(cb)
	}
	if err := r.Load(settings.Functions...); err != nil {
		return nil, exitError(exitInput, "loading functions: %v", err)
	}
	return r, nil
}

func callbackMode(cmd *cobra.Command) callbacks.Mode {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return callbacks.ModeVerbose
	}
	return callbacks.ModeDefault
}
