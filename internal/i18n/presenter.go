package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roasbeef/spotter/internal/kvstore"
)

// View is the surface the presenter renders labels onto.
type View interface {
	// SetDocumentLang marks the document with the active locale.
	SetDocumentLang(lang Locale)

	// SetLabel replaces the text of one fixed label.
	SetLabel(id LabelID, text string)

	// SetToggle updates the language toggle's accessible label and the
	// short code it displays.
	SetToggle(ariaLabel, shortCode string)
}

// InputBox is the review text box shared by the presenter, the selection
// loader and the controller.
type InputBox interface {
	// Text returns the box contents.
	Text() string

	// IsPlaceholder reports whether the contents are placeholder content
	// rather than a real selection.
	IsPlaceholder() bool

	// SetText replaces the contents and the placeholder flag.
	SetText(text string, placeholder bool)
}

// PresenterConfig holds the presenter's collaborators.
type PresenterConfig struct {
	Store kvstore.Store
	View  View

	// Input is optional. When set, placeholder content is re-localized on
	// every Apply.
	Input InputBox

	// Table defaults to DefaultTable.
	Table Table

	Log *slog.Logger
}

// Presenter tracks the active locale and renders it.
type Presenter struct {
	store kvstore.Store
	view  View
	input InputBox
	table Table
	log   *slog.Logger

	mu      sync.RWMutex
	current Locale
}

// NewPresenter creates a presenter showing the primary locale. Call Init to
// restore the persisted one.
func NewPresenter(cfg PresenterConfig) *Presenter {
	if cfg.Table == nil {
		cfg.Table = DefaultTable()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	return &Presenter{
		store:   cfg.Store,
		view:    cfg.View,
		input:   cfg.Input,
		table:   cfg.Table,
		log:     cfg.Log.With("component", "i18n"),
		current: Primary,
	}
}

// Resolve maps an arbitrary language code to a supported locale.
func (p *Presenter) Resolve(lang string) Locale {
	if _, ok := p.table[Locale(lang)]; ok {
		return Locale(lang)
	}

	return Primary
}

// Init restores the persisted locale, falling back to the primary one, and
// renders it.
func (p *Presenter) Init(ctx context.Context) error {
	lang := Primary

	stored, err := p.store.Get(ctx, kvstore.KeyUILang)
	if err != nil {
		p.log.WarnContext(ctx, "Unable to read stored language",
			"error", err,
		)
	} else {
		lang = p.Resolve(stored.UnwrapOr(string(Primary)))
	}

	return p.Apply(ctx, lang)
}

// Apply renders lang and persists it. The view is updated even if persisting
// fails; the storage error is returned.
func (p *Presenter) Apply(ctx context.Context, lang Locale) error {
	lang = p.Resolve(string(lang))
	strs := p.table[lang]

	p.mu.Lock()
	p.current = lang
	p.mu.Unlock()

	if p.view != nil {
		p.view.SetDocumentLang(lang)
		for _, id := range Labels {
			if text, ok := strs.Labels[id]; ok {
				p.view.SetLabel(id, text)
			}
		}
		p.view.SetToggle(strs.ToggleLabel, lang.ShortCode())
	}

	// Only the hint itself is re-localized. A stored review shown with the
	// placeholder flag is still a review and stays submittable.
	if p.input != nil {
		text := p.input.Text()
		if text == "" || p.IsPlaceholder(text) {
			p.input.SetText(strs.Placeholder, true)
		}
	}

	if err := p.store.Set(ctx, kvstore.KeyUILang, string(lang)); err != nil {
		return fmt.Errorf("persist language: %w", err)
	}

	p.log.DebugContext(ctx, "Applied language", "lang", lang)

	return nil
}

// Toggle switches to the other locale.
func (p *Presenter) Toggle(ctx context.Context) error {
	return p.Apply(ctx, p.Current().Other())
}

// Current returns the active locale.
func (p *Presenter) Current() Locale {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.current
}

// Strings returns the active locale's strings.
func (p *Presenter) Strings() Strings {
	return p.table[p.Current()]
}

// IsPlaceholder reports whether text equals the placeholder of any locale.
func (p *Presenter) IsPlaceholder(text string) bool {
	for _, strs := range p.table {
		if text == strs.Placeholder {
			return true
		}
	}

	return false
}
