package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/callbacks"
	"github.com/effective-security/functic/encoding"
	"github.com/effective-security/functic/pkg/llmtools"
	"github.com/effective-security/functic/store"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewFunctionsCmd creates the "functions" subcommand.
func NewFunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "Inspect and invoke the functions",
	}
	cmd.PersistentFlags().String("format", "", "Output format: json, yaml or toml")

	cmd.AddCommand(
		newFunctionsListCmd(),
		newFunctionsGetCmd(),
		newFunctionsToolsCmd(),
		newFunctionsInvokeCmd(),
		newFunctionsExampleCmd(),
		newFunctionsSyncCmd(),
		newFunctionsStoredCmd(),
	)
	return cmd
}

func newFunctionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the loaded functions",
		Args:  cobra.NoArgs,
		RunE:  runFunctionsList,
	}
}

func runFunctionsList(cmd *cobra.Command, _ []string) error {
	registry, err := registryFromFlags(cmd, nil)
	if err != nil {
		return err
	}

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		page := tools.NewPagination(registry.Definitions(), func(def tools.FunctionDefinition) string {
			return def.Name
		})
		return printFormatted(cmd, page)
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tDESCRIPTION")
	for _, tool := range registry.List() {
		fmt.Fprintf(writer, "%s\t%s\n", tool.Name(), truncate(tool.Description(), 80))
	}
	return writer.Flush()
}

func newFunctionsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print the function definition",
		Args:  cobra.ExactArgs(1),
		RunE:  runFunctionsGet,
	}
}

func runFunctionsGet(cmd *cobra.Command, args []string) error {
	registry, err := registryFromFlags(cmd, nil)
	if err != nil {
		return err
	}
	tool, err := getTool(registry, args[0])
	if err != nil {
		return err
	}
	return printFormatted(cmd, tool.Definition())
}

func newFunctionsToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tools param for the LLM provider",
		Args:  cobra.NoArgs,
		RunE:  runFunctionsTools,
	}
	cmd.Flags().String("provider", "openai", "LLM provider: openai, assistant, anthropic or gemini")
	return cmd
}

func runFunctionsTools(cmd *cobra.Command, _ []string) error {
	registry, err := registryFromFlags(cmd, nil)
	if err != nil {
		return err
	}
	defs := registry.Definitions()

	var list any
	provider, _ := cmd.Flags().GetString("provider")
	switch strings.ToLower(provider) {
	case "openai":
		list = llmtools.OpenAITools(defs...)
	case "assistant":
		fts := make([]tools.FunctionTool, 0, len(defs))
		for _, def := range defs {
			fts = append(fts, tools.NewFunctionTool(def))
		}
		list = fts
	case "anthropic":
		list = llmtools.AnthropicTools(defs...)
	case "gemini":
		list, err = llmtools.GenAITools(defs...)
		if err != nil {
			return exitError(exitRuntime, "converting tools: %v", err)
		}
	default:
		return exitError(exitInput, "unsupported provider: %q", provider)
	}

	return printFormatted(cmd, map[string]any{"tools": list})
}

func newFunctionsInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <name> [arguments]",
		Short: "Invoke the function with JSON arguments",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runFunctionsInvoke,
	}
	cmd.Flags().String("args-file", "", "Read the arguments from the file: JSON, YAML or TOML")
	return cmd
}

func runFunctionsInvoke(cmd *cobra.Command, args []string) error {
	var cb tools.Callback
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cb = callbacks.NewPrinter(cmd.ErrOrStderr(), callbacks.ModeVerbose)
	}
	registry, err := registryFromFlags(cmd, cb)
	if err != nil {
		return err
	}

	arguments := "{}"
	if len(args) > 1 {
		arguments = args[1]
	}
	if file, _ := cmd.Flags().GetString("args-file"); file != "" {
		doc, err := os.ReadFile(file)
		if err != nil {
			return exitError(exitInput, "reading arguments: %v", err)
		}
		js, err := encoding.ToJSON(encoding.FormatFromFile(file), doc)
		if err != nil {
			return exitError(exitInput, "decoding arguments: %v", err)
		}
		arguments = string(js)
	}

	call := tools.ToolCall{
		ID:   "call_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Type: tools.ToolTypeFunction,
		Function: tools.FunctionCall{
			Name:      args[0],
			Arguments: arguments,
		},
	}

	out, err := registry.Execute(cmd.Context(), call)
	if err != nil {
		switch {
		case errors.Is(err, tools.ErrToolNotFound):
			return exitError(exitNotFound, "function %q not found", args[0])
		case errors.Is(err, tools.ErrInvalidArguments):
			return exitError(exitInput, "invalid arguments: %v", err)
		case out == nil:
			return exitError(exitRuntime, "%v", err)
		}
		// the failed call still reports the error content to the model
		logger.ContextKV(cmd.Context(), xlog.WARNING,
			"reason", "invoke",
			"function", args[0],
			"err", err.Error(),
		)
	}

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		return printFormatted(cmd, out)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Output)
	return nil
}

func newFunctionsExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example <name>",
		Short: "Print example arguments of the function",
		Args:  cobra.ExactArgs(1),
		RunE:  runFunctionsExample,
	}
}

func runFunctionsExample(cmd *cobra.Command, args []string) error {
	registry, err := registryFromFlags(cmd, nil)
	if err != nil {
		return err
	}
	tool, err := getTool(registry, args[0])
	if err != nil {
		return err
	}
	ex, ok := tool.(tools.IExample)
	if !ok {
		return exitError(exitInput, "function %q does not provide examples", args[0])
	}
	v, err := ex.ExampleArguments()
	if err != nil {
		return exitError(exitRuntime, "generating example: %v", err)
	}
	return printFormatted(cmd, v)
}

func newFunctionsSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Store the function definitions in the database",
		Args:  cobra.NoArgs,
		RunE:  runFunctionsSync,
	}
}

func runFunctionsSync(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(settings, nil)
	if err != nil {
		return err
	}
	if err = syncFunctions(cmd, settings, registry); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d function(s) in %s\n", registry.Len(), settings.MaskedConnectionString())
	return nil
}

func newFunctionsStoredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stored",
		Short: "List the function definitions in the database",
		Args:  cobra.NoArgs,
		RunE:  runFunctionsStored,
	}
}

func runFunctionsStored(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := store.Open(ctx, settings.DatabaseConnectionString, settings.DatabaseName, settings.FunctionsTableName)
	if err != nil {
		return exitError(exitRuntime, "opening store %s: %v", settings.MaskedConnectionString(), err)
	}
	defer func() {
		_ = st.Close()
	}()

	list, err := st.List(ctx)
	if err != nil {
		return exitError(exitRuntime, "listing functions: %v", err)
	}

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		return printFormatted(cmd, tools.NewPagination(list, func(rec *store.FunctionRecord) string {
			return rec.Name
		}))
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tUPDATED")
	for _, rec := range list {
		fmt.Fprintf(writer, "%s\t%s\n", rec.Name, rec.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return writer.Flush()
}

func registryFromFlags(cmd *cobra.Command, cb tools.Callback) (*tools.Registry, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return loadRegistry(settings, cb)
}

func getTool(registry *tools.Registry, name string) (tools.ITool, error) {
	tool, err := registry.Get(name)
	if err != nil {
		return nil, exitError(exitNotFound, "function %q not found", name)
	}
	return tool, nil
}

func printFormatted(cmd *cobra.Command, v any) error {
	name, _ := cmd.Flags().GetString("format")
	format, err := encoding.ParseFormat(name)
	if err != nil {
		return exitError(exitInput, "%v", err)
	}
	bs, err := encoding.Marshal(format, v)
	if err != nil {
		return exitError(exitRuntime, "encoding output: %v", err)
	}
	_, _ = cmd.OutOrStdout().Write(bs)
	return nil
}

func truncate(s string, size int) string {
	r := []rune(s)
	if len(r) <= size {
		return s
	}
	return string(r[:size-3]) + "..."
}
