package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/assistant"
	"github.com/effective-security/functic/cache"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/cobra"
)

// NewAssistantCmd creates the "assistant" subcommand.
func NewAssistantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistant",
		Short: "Manage the OpenAI assistants",
	}
	cmd.AddCommand(newAssistantEnsureCmd())
	return cmd
}

func newAssistantEnsureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensure <id-or-name>",
		Short: "Find the assistant by ID or name, optionally create it with the functions",
		Args:  cobra.ExactArgs(1),
		RunE:  runAssistantEnsure,
	}
	cmd.Flags().Bool("force", false, "Skip the cached assistant")
	cmd.Flags().Bool("create", false, "Create the assistant with the functions if not found")
	cmd.Flags().String("model", "gpt-4o-mini", "Model of the created assistant")
	cmd.Flags().String("instructions", "", "Instructions of the created assistant")
	cmd.Flags().String("base-url", "", "OpenAI API URL")
	cmd.Flags().String("format", "", "Output format: json, yaml or toml")
	return cmd
}

func runAssistantEnsure(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	c, err := cache.Open(settings.CacheURL)
	if err != nil {
		return exitError(exitInput, "opening cache: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	force, _ := cmd.Flags().GetBool("force")
	opts := []assistant.Option{
		assistant.WithCache(c),
		assistant.WithExpire(settings.CacheExpire()),
		assistant.WithForce(force),
	}

	if create, _ := cmd.Flags().GetBool("create"); create {
		registry, err := loadRegistry(settings, nil)
		if err != nil {
			return err
		}
		model, _ := cmd.Flags().GetString("model")
		instructions, _ := cmd.Flags().GetString("instructions")
		opts = append(opts, assistant.WithCreate(&assistant.CreateRequest{
			Model:        model,
			Instructions: instructions,
			Tools:        assistant.FunctionTools(registry.Definitions()...),
		}))
	}

	var clientOpts []option.RequestOption
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}

	a, err := assistant.Ensure(ctx, assistant.NewOpenAIClient(clientOpts...), args[0], opts...)
	if err != nil {
		if errors.Is(err, assistant.ErrAssistantNotFound) {
			return exitError(exitNotFound, "%v", err)
		}
		return exitError(exitRuntime, "ensuring assistant: %v", err)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "ensured",
		"assistant", a.ID,
		"functions", a.FunctionNames(),
	)
	return printFormatted(cmd, a)
}
