package commands

import (
	"os"

	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/view"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate and list store recommendations",
	Long: `Recommend asks the backend to regenerate recommendations, then reads
the result list from recommendations_source (a file or URL) and prints it.`,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, _ []string) error {
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

	console := view.NewConsole(os.Stdout, verbose)
	p, err := newPresenter(ctx, console, nil)
	if err != nil {
		return err
	}

	page := recommend.NewPage(
		client, recs, console, p, logger.Logger,
	)

	// Failures are already shown as the page message.
	if _, err := page.Run(ctx); err != nil {
		logger.DebugContext(ctx, "Recommendations unavailable",
			"error", err,
		)
	}

	return nil
}
