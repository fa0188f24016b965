package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/effective-security/functic/callbacks"
	"github.com/effective-security/functic/config"
	"github.com/effective-security/functic/service"
	"github.com/effective-security/functic/store"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the functions HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("listen", "", "Listen address, overrides the settings")
	cmd.Flags().Int64("max-body", service.DefaultMaxBody, "Max request body size in bytes")
	cmd.Flags().Bool("sync", false, "Store the function definitions before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		settings.Listen = listen
	}
	if sync, _ := cmd.Flags().GetBool("sync"); sync {
		settings.SyncFunctions = true
	}
	maxBody, _ := cmd.Flags().GetInt64("max-body")

	scratchpad := callbacks.NewScratchpad(callbackMode(cmd))
	cb := callbacks.NewFanout(callbacks.NewPackageLogger(logger), scratchpad)

	registry, err := loadRegistry(settings, cb)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.SyncFunctions {
		if err = syncFunctions(cmd, settings, registry); err != nil {
			return err
		}
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "starting",
		"listen", settings.Listen,
		"functions", registry.Names(),
	)

	svc := service.New(service.Config{
		Registry:   registry,
		MaxBody:    maxBody,
		Scratchpad: scratchpad,
	})
	if err = svc.ListenAndServe(ctx, settings.Listen); err != nil {
		return exitError(exitRuntime, "server error: %v", err)
	}
	return nil
}

// syncFunctions stores the definitions of the registry.
func syncFunctions(cmd *cobra.Command, settings *config.Settings, registry *tools.Registry) error {
	ctx := cmd.Context()
	st, err := store.Open(ctx, settings.DatabaseConnectionString, settings.DatabaseName, settings.FunctionsTableName)
	if err != nil {
		return exitError(exitRuntime, "opening store %s: %v", settings.MaskedConnectionString(), err)
	}
	defer func() {
		_ = st.Close()
	}()

	count, err := store.Sync(ctx, st, registry.Definitions())
	if err != nil {
		return exitError(exitRuntime, "syncing functions: %v", err)
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "synced",
		"store", settings.MaskedConnectionString(),
		"functions", count,
	)
	return nil
}
