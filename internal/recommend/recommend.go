// Package recommend implements the recommendation page: it asks the backend
// to generate recommendations, then shows the published result list.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/reviewapi"
)

// MaxListBytes caps how much of a remote result list is read.
const MaxListBytes = 4 << 20

var (
	// ErrInvalidFormat is returned when the result list is not a JSON
	// array.
	ErrInvalidFormat = errors.New("recommendations are not a list")

	// ErrListTooLarge is returned when a remote list exceeds MaxListBytes.
	ErrListTooLarge = errors.New("recommendations list too large")
)

// Item is one recommended store. The keys match the published JSON.
type Item struct {
	Store  string `json:"가게"`
	Reason string `json:"이유"`
	Review string `json:"리뷰"`
}

// Trigger asks the backend to (re)generate recommendations.
type Trigger interface {
	TriggerRecommendations(ctx context.Context) error
}

// ListSource returns the raw result list.
type ListSource interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileSource reads the list from a local file.
type FileSource struct {
	Path string
}

// Load reads the file.
func (f FileSource) Load(_ context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}

// URLSource fetches the list over HTTP.
type URLSource struct {
	URL    string
	Client *http.Client
}

// Load fetches the URL.
func (u URLSource) Load(ctx context.Context) ([]byte, error) {
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u.URL,
			resp.StatusCode)
	}

	return readList(resp.Body)
}

// readList reads at most MaxListBytes from r.
func readList(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxListBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxListBytes {
		return nil, ErrListTooLarge
	}

	return data, nil
}

// Display renders the page's result region.
type Display interface {
	// SetMessage replaces the region with a message.
	SetMessage(text string)

	// SetItems replaces the region with an ordered list.
	SetItems(items []Item, strs i18n.Strings)
}

// Texts supplies the localized strings.
type Texts interface {
	Strings() i18n.Strings
}

// Page is the recommendation page's logic.
type Page struct {
	trigger Trigger
	source  ListSource
	display Display
	texts   Texts
	log     *slog.Logger
}

// NewPage creates a recommendation page. trigger may be nil to skip the
// backend call.
func NewPage(trigger Trigger, source ListSource, display Display,
	texts Texts, log *slog.Logger) *Page {

	if log == nil {
		log = slog.Default()
	}

	return &Page{
		trigger: trigger,
		source:  source,
		display: display,
		texts:   texts,
		log:     log.With("component", "recommend"),
	}
}

// Run triggers generation and shows the result list. A failed trigger is
// logged and does not stop the list from loading.
func (p *Page) Run(ctx context.Context) ([]Item, error) {
	strs := p.texts.Strings()
	p.display.SetMessage("")

	if p.trigger != nil {
		err := p.trigger.TriggerRecommendations(ctx)

		var statusErr *reviewapi.StatusError
		switch {
		case errors.As(err, &statusErr):
			p.log.WarnContext(ctx, "Recommendation trigger rejected",
				"status", statusErr.StatusCode,
				"detail", statusErr.Detail,
			)

		case err != nil:
			p.log.WarnContext(ctx, "Recommendation trigger failed",
				"error", err,
			)
		}
	}

	raw, err := p.source.Load(ctx)
	if err != nil {
		p.log.ErrorContext(ctx, "Unable to load recommendations",
			"error", err,
		)
		p.display.SetMessage(strs.LoadFailed)

		return nil, fmt.Errorf("load recommendations: %w", err)
	}

	items, err := Parse(raw)
	switch {
	case errors.Is(err, ErrInvalidFormat):
		p.display.SetMessage(strs.InvalidResults)
		return nil, err

	case err != nil:
		p.display.SetMessage(strs.LoadFailed)
		return nil, err
	}

	p.display.SetItems(items, strs)

	return items, nil
}

// Parse decodes a result list. Valid JSON that is not an array yields
// ErrInvalidFormat.
func Parse(raw []byte) ([]Item, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	if _, ok := decoded.([]any); !ok {
		return nil, ErrInvalidFormat
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}

	return items, nil
}
