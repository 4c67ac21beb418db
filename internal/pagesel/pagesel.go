// Package pagesel provides page selection sources for hosts without a live
// browser tab: review text is cut out of an HTML page with a CSS selector.
package pagesel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultSelector matches the review containers of common shop pages.
const DefaultSelector = ".review, [itemprop=reviewBody], blockquote"

// MaxPageBytes caps how much of a fetched page is read.
const MaxPageBytes = 8 << 20

var whitespaceRe = regexp.MustCompile(`\s+`)

// Static is a source that always returns the same text.
type Static string

// Selection returns the text.
func (s Static) Selection(context.Context) (string, error) {
	return string(s), nil
}

// HTML extracts the selection from an HTML document.
type HTML struct {
	// Location is a file path or an http(s) URL.
	Location string

	// Selector picks the review elements. Defaults to DefaultSelector.
	Selector string

	// Index picks which match to return. Negative joins every match.
	Index int

	Client *http.Client
}

// Selection loads the document and returns the selected text, or "" when
// nothing matches.
func (h HTML) Selection(ctx context.Context) (string, error) {
	body, contentType, err := h.load(ctx)
	if err != nil {
		return "", err
	}

	return Extract(body, contentType, h.selector(), h.Index)
}

func (h HTML) selector() string {
	if h.Selector == "" {
		return DefaultSelector
	}

	return h.Selector
}

func (h HTML) load(ctx context.Context) ([]byte, string, error) {
	if !strings.HasPrefix(h.Location, "http://") &&
		!strings.HasPrefix(h.Location, "https://") {

		data, err := os.ReadFile(h.Location)
		return data, "", err
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, h.Location, nil,
	)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", h.Location,
			resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > MaxPageBytes {
		return nil, "", fmt.Errorf("fetch %s: page exceeds %d bytes",
			h.Location, MaxPageBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// Extract decodes data to UTF-8 and returns the whitespace-collapsed text of
// the index'th element matching selector.
func Extract(data []byte, contentType, selector string,
	index int) (string, error) {

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("decode page: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	doc.Find("script,noscript,style").Remove()

	var texts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRe.ReplaceAllString(
			s.Text(), " ",
		))
		if text != "" {
			texts = append(texts, text)
		}
	})

	switch {
	case index < 0:
		return strings.Join(texts, "\n"), nil
	case index < len(texts):
		return texts[index], nil
	default:
		return "", nil
	}
}
