package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/roasbeef/spotter/internal/feedback"
	"github.com/roasbeef/spotter/internal/selection"
	"github.com/roasbeef/spotter/internal/view"
	"github.com/spf13/cobra"
)

var (
	markAd      bool
	markGenuine bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback (--ad | --genuine) [text...]",
	Short: "Record whether a review is an ad",
	Long: `Feedback labels a review as an advertisement or genuine. The review is
the arguments when given, otherwise the stored selection.`,
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().BoolVar(
		&markAd, "ad", false, "The review is an advertisement",
	)
	feedbackCmd.Flags().BoolVar(
		&markGenuine, "genuine", false, "The review is genuine",
	)
	feedbackCmd.MarkFlagsMutuallyExclusive("ad", "genuine")
	feedbackCmd.MarkFlagsOneRequired("ad", "genuine")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	console := view.NewConsole(os.Stdout, verbose)
	box := view.NewTextBox("", false)

	p, err := newPresenter(ctx, console, box)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		box.SetText(strings.Join(args, " "), false)
	} else {
		loader := selection.NewLoader(
			nil, store, box, p, logger.Logger,
		)
		if err := loader.LoadStored(ctx); err != nil {
			return err
		}
	}

	page := feedback.NewPage(client, box, p, console, logger.Logger)

	err = page.Submit(ctx, markAd)

	// The status line already said what was wrong.
	if errors.Is(err, feedback.ErrNoSelection) {
		return nil
	}

	return err
}
