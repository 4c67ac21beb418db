package i18n

import (
	"context"
	"errors"
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/spotter/internal/kvstore"
	"github.com/stretchr/testify/require"
)

// fakeView records the last value of every rendered element.
type fakeView struct {
	lang   Locale
	labels map[LabelID]string
	aria   string
	short  string
}

func newFakeView() *fakeView {
	return &fakeView{labels: make(map[LabelID]string)}
}

func (v *fakeView) SetDocumentLang(lang Locale)      { v.lang = lang }
func (v *fakeView) SetLabel(id LabelID, text string) { v.labels[id] = text }
func (v *fakeView) SetToggle(aria, short string) {
	v.aria = aria
	v.short = short
}

// fakeBox is a minimal InputBox.
type fakeBox struct {
	text        string
	placeholder bool
}

func (b *fakeBox) Text() string        { return b.text }
func (b *fakeBox) IsPlaceholder() bool { return b.placeholder }
func (b *fakeBox) SetText(text string, placeholder bool) {
	b.text = text
	b.placeholder = placeholder
}

// failingStore fails every write.
type failingStore struct{}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func (failingStore) Get(context.Context, string) (fn.Option[string], error) {
	return fn.None[string](), nil
}

func TestInitDefaultsToKorean(t *testing.T) {
	t.Parallel()

	view := newFakeView()
	p := NewPresenter(PresenterConfig{
		Store: kvstore.NewMemStore(), View: view,
	})
	require.NoError(t, p.Init(context.Background()))

	require.Equal(t, Korean, p.Current())
	require.Equal(t, Korean, view.lang)
	require.Equal(t, "EN", view.short)
	require.Equal(t, "시작하기", view.labels[LabelStart])
	require.Len(t, view.labels, len(Labels))
}

func TestInitUnknownStoredLanguage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set(ctx, kvstore.KeyUILang, "fr"))

	p := NewPresenter(PresenterConfig{Store: store, View: newFakeView()})
	require.NoError(t, p.Init(ctx))
	require.Equal(t, Korean, p.Current())
}

// TestSwitchPersistsAndRestores switches to English, then reopens the popup
// against the same store.
func TestSwitchPersistsAndRestores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemStore()

	view := newFakeView()
	p := NewPresenter(PresenterConfig{Store: store, View: view})
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Toggle(ctx))

	require.Equal(t, English, p.Current())
	require.Equal(t, "Start", view.labels[LabelStart])
	require.Equal(t, "Switch language", view.aria)
	require.Equal(t, "KO", view.short)

	stored, err := store.Get(ctx, kvstore.KeyUILang)
	require.NoError(t, err)
	require.Equal(t, "en", stored.UnwrapOr(""))

	reopened := newFakeView()
	p2 := NewPresenter(PresenterConfig{Store: store, View: reopened})
	require.NoError(t, p2.Init(ctx))
	require.Equal(t, English, p2.Current())
	require.Equal(t, "Start", reopened.labels[LabelStart])
}

func TestApplyRelocalizesPlaceholder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ko := DefaultTable()[Korean]
	en := DefaultTable()[English]

	tests := []struct {
		name     string
		box      fakeBox
		wantText string
	}{{
		name:     "korean placeholder text",
		box:      fakeBox{text: ko.Placeholder},
		wantText: en.Placeholder,
	}, {
		name:     "stored text flagged as placeholder",
		box:      fakeBox{text: "old review", placeholder: true},
		wantText: "old review",
	}, {
		name:     "empty box",
		box:      fakeBox{},
		wantText: en.Placeholder,
	}, {
		name:     "real selection kept",
		box:      fakeBox{text: "Great product"},
		wantText: "Great product",
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			box := tc.box
			p := NewPresenter(PresenterConfig{
				Store: kvstore.NewMemStore(),
				View:  newFakeView(),
				Input: &box,
			})
			require.NoError(t, p.Apply(ctx, English))
			require.Equal(t, tc.wantText, box.text)
		})
	}
}

// TestApplyPersistFailure verifies labels still render when storage fails.
func TestApplyPersistFailure(t *testing.T) {
	t.Parallel()

	view := newFakeView()
	p := NewPresenter(PresenterConfig{Store: failingStore{}, View: view})

	err := p.Apply(context.Background(), English)
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, English, p.Current())
	require.Equal(t, "Start", view.labels[LabelStart])
}

func TestIsPlaceholderAnyLocale(t *testing.T) {
	t.Parallel()

	p := NewPresenter(PresenterConfig{Store: kvstore.NewMemStore()})
	for _, strs := range DefaultTable() {
		require.True(t, p.IsPlaceholder(strs.Placeholder))
	}
	require.False(t, p.IsPlaceholder("리뷰"))
}
