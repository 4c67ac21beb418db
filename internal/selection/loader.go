// Package selection fills the review box from the active page's selection,
// falling back to the last stored selection.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/kvstore"
)

// Source returns the text currently selected on the active page.
type Source interface {
	Selection(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

// Selection calls f.
func (f SourceFunc) Selection(ctx context.Context) (string, error) {
	return f(ctx)
}

// Placeholder supplies the current locale's placeholder text.
type Placeholder interface {
	Strings() i18n.Strings
}

// Loader populates an InputBox.
type Loader struct {
	source Source
	store  kvstore.Store
	box    i18n.InputBox
	texts  Placeholder
	log    *slog.Logger
}

// NewLoader creates a loader. source may be nil, in which case Load behaves
// like LoadStored.
func NewLoader(source Source, store kvstore.Store, box i18n.InputBox,
	texts Placeholder, log *slog.Logger) *Loader {

	if log == nil {
		log = slog.Default()
	}

	return &Loader{
		source: source,
		store:  store,
		box:    box,
		texts:  texts,
		log:    log.With("component", "selection"),
	}
}

// Load shows the live selection when there is one and persists it. Otherwise
// it shows the stored selection, flagged as placeholder content.
func (l *Loader) Load(ctx context.Context) error {
	if l.source != nil {
		text, err := l.source.Selection(ctx)
		if err != nil {
			l.log.WarnContext(ctx, "Unable to read page selection",
				"error", err,
			)
		}

		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			l.box.SetText(text, false)

			err := l.store.Set(ctx, kvstore.KeySelectedText, text)
			if err != nil {
				return fmt.Errorf("persist selection: %w", err)
			}

			return nil
		}
	}

	return l.fallback(ctx)
}

// fallback shows the stored selection flagged as placeholder content, or the
// localized placeholder when nothing is stored.
func (l *Loader) fallback(ctx context.Context) error {
	stored, err := l.store.Get(ctx, kvstore.KeySelectedText)
	if err != nil {
		l.box.SetText(l.texts.Strings().Placeholder, true)
		return fmt.Errorf("read stored selection: %w", err)
	}

	l.box.SetText(stored.UnwrapOr(l.texts.Strings().Placeholder), true)

	return nil
}

// LoadStored shows the stored selection as real content, or the localized
// placeholder when nothing is stored. The page is never queried.
func (l *Loader) LoadStored(ctx context.Context) error {
	stored, err := l.store.Get(ctx, kvstore.KeySelectedText)
	if err != nil {
		l.box.SetText(l.texts.Strings().Placeholder, true)
		return fmt.Errorf("read stored selection: %w", err)
	}

	text := strings.TrimSpace(stored.UnwrapOr(""))
	if text == "" {
		l.box.SetText(l.texts.Strings().Placeholder, true)
		return nil
	}
	l.box.SetText(text, false)

	return nil
}
