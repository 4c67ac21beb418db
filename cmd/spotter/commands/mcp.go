package commands

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/spotter/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the review tools over MCP on stdio",
	Long: `MCP exposes analyze_review, submit_feedback, get_recommendations and
set_language to an MCP client on stdin/stdout. Logs go to stderr.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}
	recs, err := recommendationSource()
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.Config{
		Backend:         client,
		Feedback:        client,
		Trigger:         client,
		Recommendations: recs,
		Store:           store,
		Cache:           cfg.Cache(),
		Log:             logger.Logger,
	})

	if cfg.Lang != "" {
		_, err = srv.SetLanguage(ctx, cfg.Lang)
	} else {
		err = srv.Init(ctx)
	}
	if err != nil {
		return err
	}

	logger.Info("Starting MCP server on stdio")

	return srv.Run(ctx, &sdkmcp.StdioTransport{})
}
