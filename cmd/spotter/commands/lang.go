package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/view"
	"github.com/spf13/cobra"
)

var langCmd = &cobra.Command{
	Use:   "lang",
	Short: "Show the UI language",
	Args:  cobra.NoArgs,
	RunE:  runLang,
}

var langSetCmd = &cobra.Command{
	Use:       "set <ko|en>",
	Short:     "Set and store the UI language",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(i18n.Korean), string(i18n.English)},
	RunE:      runLangSet,
}

var langToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch to the other UI language",
	Args:  cobra.NoArgs,
	RunE:  runLangToggle,
}

func init() {
	langCmd.AddCommand(langSetCmd)
	langCmd.AddCommand(langToggleCmd)
}

// langPresenter renders silently unless --verbose is set.
func langPresenter() *i18n.Presenter {
	var out io.Writer = io.Discard
	if verbose {
		out = os.Stdout
	}

	return i18n.NewPresenter(i18n.PresenterConfig{
		Store: store,
		View:  view.NewConsole(out, true),
		Log:   logger.Logger,
	})
}

func printLang(p *i18n.Presenter) {
	lang := p.Current()
	fmt.Printf("%s (toggle shows %s)\n", lang, lang.ShortCode())
}

func runLang(cmd *cobra.Command, _ []string) error {
	p := langPresenter()
	if err := p.Init(cmd.Context()); err != nil {
		return err
	}
	printLang(p)

	return nil
}

func runLangSet(cmd *cobra.Command, args []string) error {
	if args[0] != string(i18n.Korean) && args[0] != string(i18n.English) {
		return fmt.Errorf("unknown language %q (must be 'ko' or 'en')",
			args[0])
	}

	p := langPresenter()
	if err := p.Apply(cmd.Context(), i18n.Locale(args[0])); err != nil {
		return err
	}
	printLang(p)

	return nil
}

func runLangToggle(cmd *cobra.Command, _ []string) error {
	p := langPresenter()
	if err := p.Init(cmd.Context()); err != nil {
		return err
	}
	if err := p.Toggle(cmd.Context()); err != nil {
		return err
	}
	printLang(p)

	return nil
}
