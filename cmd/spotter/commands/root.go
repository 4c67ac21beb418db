package commands

import (
	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML config file.
	configPath string

	// envFile is an optional .env file loaded before SPOTTER_* overrides.
	envFile string

	// Flag overrides for the matching config fields.
	envName  string
	baseURL  string
	langFlag string
	dbPath   string
	logLevel string

	// memoryStore keeps the key-value state in memory for this run.
	memoryStore bool

	// verbose prints label and language updates as they are rendered.
	verbose bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "spotter",
	Short: "Check whether a review is a paid advertisement",
	Long: `Spotter asks the review backend for an AI reply and an ad probability
for a piece of review text, records user feedback, and shows store
recommendations.

Text comes from the arguments, a web page (--page), or the last stored
selection. "spotter serve" runs the same pages for a browser and "spotter
mcp" exposes them as MCP tools.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(
		&configPath, "config", "",
		"Path to config file (default: ~/.spotter/config.yaml)",
	)
	flags.StringVar(
		&envFile, "env-file", "",
		"Path to a .env file (default: ./.env if present)",
	)
	flags.StringVar(
		&envName, "env", "",
		"Backend deployment: local or server",
	)
	flags.StringVar(
		&baseURL, "base-url", "",
		"Backend base URL, overriding --env",
	)
	flags.StringVar(
		&langFlag, "lang", "",
		"Force the UI language: ko or en",
	)
	flags.StringVar(
		&dbPath, "db", "",
		"Path to SQLite state database (default: ~/.spotter/spotter.db)",
	)
	flags.BoolVar(
		&memoryStore, "memory", false,
		"Keep state in memory instead of the database",
	)
	flags.StringVar(
		&logLevel, "log-level", "",
		"Log level: trace, debug, info, warn, error, critical, off",
	)
	flags.BoolVarP(
		&verbose, "verbose", "v", false,
		"Print label and language updates",
	)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}
