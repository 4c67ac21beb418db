package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/score"
)

// barWidth is the number of cells in the text progress bar.
const barWidth = 20

// Console renders popup output as plain text lines. It implements the
// display interfaces of every page, so one Console can serve a whole CLI
// invocation.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	labels  map[i18n.LabelID]string
}

// NewConsole writes to w. Label and toggle updates are only printed when
// verbose is set.
func NewConsole(w io.Writer, verbose bool) *Console {
	return &Console{
		w:       w,
		verbose: verbose,
		labels:  make(map[i18n.LabelID]string),
	}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, format, args...)
}

// Label returns the last text rendered for id.
func (c *Console) Label(id i18n.LabelID) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.labels[id]
}

// SetDocumentLang implements i18n.View.
func (c *Console) SetDocumentLang(lang i18n.Locale) {
	if c.verbose {
		c.printf("[lang] %s\n", lang)
	}
}

// SetLabel implements i18n.View.
func (c *Console) SetLabel(id i18n.LabelID, text string) {
	c.mu.Lock()
	c.labels[id] = text
	c.mu.Unlock()

	if c.verbose {
		c.printf("[%s] %s\n", id, strings.ReplaceAll(text, "\n", " "))
	}
}

// SetToggle implements i18n.View.
func (c *Console) SetToggle(ariaLabel, shortCode string) {
	if c.verbose {
		c.printf("[toggle] %s (%s)\n", shortCode, ariaLabel)
	}
}

// SetResult prints the summary region.
func (c *Console) SetResult(text string) {
	c.printf("%s: %s\n", c.Label(i18n.LabelResult), text)
}

// SetScore prints the indicator as a bar.
func (c *Console) SetScore(ind score.Indicator) {
	c.printf("%s: %s %s\n", c.Label(i18n.LabelScore), Bar(ind),
		ind.Label)
}

// SetScoreMessage prints a message in the score region.
func (c *Console) SetScoreMessage(text string) {
	c.printf("%s: %s\n", c.Label(i18n.LabelScore), text)
}

// SetLoading prints the working placeholder.
func (c *Console) SetLoading(text string) {
	c.printf("%s\n", text)
}

// SetStatus prints the evaluation page status.
func (c *Console) SetStatus(text string) {
	c.printf("%s\n", text)
}

// SetMessage prints the recommendation page message. Empty messages clear
// the region and print nothing.
func (c *Console) SetMessage(text string) {
	if text != "" {
		c.printf("%s\n", text)
	}
}

// SetItems prints the recommendations as an ordered list.
func (c *Console) SetItems(items []recommend.Item, strs i18n.Strings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range items {
		fmt.Fprintf(c.w, "%d. %s: %s\n", i+1, strs.StoreField, item.Store)
		fmt.Fprintf(c.w, "   %s: %s\n", strs.ReasonField, item.Reason)
		fmt.Fprintf(c.w, "   %s: %s\n", strs.ReviewField, item.Review)
	}
}

// Bar draws the indicator as "[####----] band".
func Bar(ind score.Indicator) string {
	filled := int(ind.Percent / 100 * barWidth)

	return fmt.Sprintf("[%s%s] %s", strings.Repeat("#", filled),
		strings.Repeat("-", barWidth-filled), ind.Band)
}
