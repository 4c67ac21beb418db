// Package view holds the host-side widgets shared by the CLI and the web
// view: the review text box and a plain-text renderer.
package view

import (
	"sync"

	"github.com/roasbeef/spotter/internal/i18n"
)

// TextBox holds the review input and whether it shows placeholder content.
type TextBox struct {
	mu          sync.RWMutex
	text        string
	placeholder bool
}

// NewTextBox creates a text box with initial contents.
func NewTextBox(text string, placeholder bool) *TextBox {
	return &TextBox{text: text, placeholder: placeholder}
}

// Text returns the box contents.
func (b *TextBox) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.text
}

// IsPlaceholder reports whether the contents are placeholder content.
func (b *TextBox) IsPlaceholder() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.placeholder
}

// SetText replaces the contents.
func (b *TextBox) SetText(text string, placeholder bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.text = text
	b.placeholder = placeholder
}

var _ i18n.InputBox = (*TextBox)(nil)
