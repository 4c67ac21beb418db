// Package feedback implements the evaluation page: the user labels the stored
// selection as an ad or a genuine review and the label is sent to the
// backend.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roasbeef/spotter/internal/i18n"
)

// ErrNoSelection is returned when there is no real text to label.
var ErrNoSelection = errors.New("no review text selected")

// Submitter sends one label to the backend.
type Submitter interface {
	SubmitFeedback(ctx context.Context, text string, isAd bool) error
}

// Status shows the page's status line.
type Status interface {
	SetStatus(text string)
}

// Messages supplies the localized strings and the placeholder check.
type Messages interface {
	Strings() i18n.Strings
	IsPlaceholder(text string) bool
}

// Page is the evaluation page's submit logic.
type Page struct {
	api    Submitter
	box    i18n.InputBox
	texts  Messages
	status Status
	log    *slog.Logger
}

// NewPage creates an evaluation page over box. The box is expected to be
// filled by selection.Loader.LoadStored.
func NewPage(api Submitter, box i18n.InputBox, texts Messages,
	status Status, log *slog.Logger) *Page {

	if log == nil {
		log = slog.Default()
	}

	return &Page{
		api:    api,
		box:    box,
		texts:  texts,
		status: status,
		log:    log.With("component", "feedback"),
	}
}

// Submit labels the current text. The returned error is ErrNoSelection for
// placeholder content, or the backend error when saving failed; the status
// line is updated either way.
func (p *Page) Submit(ctx context.Context, isAd bool) error {
	strs := p.texts.Strings()

	text := strings.TrimSpace(p.box.Text())
	if text == "" || p.box.IsPlaceholder() || p.texts.IsPlaceholder(text) {
		p.status.SetStatus(strs.SelectFirst)
		return ErrNoSelection
	}

	if err := p.api.SubmitFeedback(ctx, text, isAd); err != nil {
		p.log.ErrorContext(ctx, "Feedback save failed", "error", err)
		p.status.SetStatus(strs.SaveFailed)

		return fmt.Errorf("save feedback: %w", err)
	}

	p.log.InfoContext(ctx, "Saved feedback", "is_ad", isAd)

	if isAd {
		p.status.SetStatus(strs.SavedAd)
	} else {
		p.status.SetStatus(strs.SavedGenuine)
	}

	return nil
}
