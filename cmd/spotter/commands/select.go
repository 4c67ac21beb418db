package commands

import (
	"fmt"
	"os"

	"github.com/roasbeef/spotter/internal/view"
	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select [text...]",
	Short: "Store a review selection for later commands",
	Long: `Select captures review text from the arguments or --page and stores it,
as highlighting text on a page does. Without a source it prints the stored
selection.`,
	RunE: runSelect,
}

func init() {
	addPageFlags(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	console := view.NewConsole(os.Stdout, verbose)
	box := view.NewTextBox("", false)

	p, err := newPresenter(ctx, console, box)
	if err != nil {
		return err
	}
	if err := loadSelection(ctx, args, box, p); err != nil {
		return err
	}

	fmt.Println(box.Text())

	return nil
}
