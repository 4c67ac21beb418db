package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/pagesel"
	"github.com/roasbeef/spotter/internal/popup"
	"github.com/roasbeef/spotter/internal/selection"
	"github.com/roasbeef/spotter/internal/view"
	"github.com/spf13/cobra"
)

var (
	// pageLocation is a web page URL or local HTML file to select from.
	pageLocation string

	// pageSelector picks the review elements on the page.
	pageSelector string

	// pageIndex picks one match; negative joins every match.
	pageIndex int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Summarize a review and show its ad probability",
	Long: `Analyze sends the review to the summary and ad-score endpoints and
prints both results.

The review is the arguments when given, otherwise the text selected from
--page, otherwise the last stored selection.`,
	RunE: runAnalyze,
}

func init() {
	addPageFlags(analyzeCmd)
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&pageLocation, "page", "",
		"Web page URL or HTML file to select the review from",
	)
	cmd.Flags().StringVar(
		&pageSelector, "selector", pagesel.DefaultSelector,
		"CSS selector of review elements on --page",
	)
	cmd.Flags().IntVar(
		&pageIndex, "index", 0,
		"Which match of --selector to use; -1 joins all of them",
	)
}

// selectionSource builds the live selection for the page flags.
func selectionSource(args []string) selection.Source {
	if len(args) > 0 {
		return pagesel.Static(strings.Join(args, " "))
	}
	if pageLocation != "" {
		return pagesel.HTML{
			Location: pageLocation,
			Selector: pageSelector,
			Index:    pageIndex,
		}
	}

	return pagesel.Static("")
}

// loadSelection fills box the way the popup does when it opens.
func loadSelection(ctx context.Context, args []string, box i18n.InputBox,
	p *i18n.Presenter) error {

	loader := selection.NewLoader(
		selectionSource(args), store, box, p, logger.Logger,
	)

	return loader.Load(ctx)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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
	if err := loadSelection(ctx, args, box, p); err != nil {
		return err
	}

	session := popup.NewSession(popup.SessionConfig{
		Backend: client,
		Cache:   cfg.Cache(),
		Log:     logger.Logger,
	})
	defer session.Close()

	ctrl := popup.NewController(session, console, p, logger.Logger)

	sub, err := ctrl.Submit(ctx, box.Text())
	if err != nil {
		return err
	}
	if err := sub.Wait(ctx); err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	return nil
}
