package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/bomx/am"
	"github.com/teranos/bomx/display"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage bomx core configuration",
	Long: `am — Manage bomx core configuration ("I am")

Display and manage bomx configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (BOMX_* prefix)
2. Project config (./bomx.toml or ./config.toml, searches up directories)
3. Default values

API keys are read only from the environment (BOMX_OPENROUTER_API_KEY or
OPENROUTER_API_KEY, BOMX_CATALOG_TOKEN or NEXAR_API_KEY), never from
config files on disk.

Examples:
  bomx am show                    # Show current configuration
  bomx am show --format json      # Show configuration in JSON format
  bomx am get catalog.base_url    # Get specific config value
  bomx am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current bomx configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., catalog.base_url, pipeline.workers)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current bomx configuration is valid",
	RunE:  runAmValidate,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Secrets never reach stdout
	redacted := *cfg
	redacted.OpenRouter.APIKey = redact(cfg.OpenRouter.APIKey)
	redacted.Catalog.Token = redact(cfg.Catalog.Token)

	switch configFormat {
	case "json":
		return display.OutputJSON(redacted)

	case "yaml":
		data, err := yaml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# bomx configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# bomx configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[set]"
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := am.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}
