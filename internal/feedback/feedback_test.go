package feedback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/kvstore"
	"github.com/roasbeef/spotter/internal/reviewapi"
	"github.com/roasbeef/spotter/internal/view"
	"github.com/stretchr/testify/require"
)

type statusLine struct {
	text string
}

func (s *statusLine) SetStatus(text string) { s.text = text }

// feedbackServer records the last body posted to /feedback.
func feedbackServer(t *testing.T, status int) (*httptest.Server,
	*reviewapi.FeedbackRequest) {

	t.Helper()

	var got reviewapi.FeedbackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		require.Equal(t, reviewapi.FeedbackPath, r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.WriteHeader(status)
		io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	return srv, &got
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	ko := i18n.DefaultTable()[i18n.Korean]

	tests := []struct {
		name       string
		box        *view.TextBox
		isAd       bool
		status     int
		wantStatus string
		wantErr    error
		wantPosted bool
	}{{
		name:       "labelled as ad",
		box:        view.NewTextBox("  협찬 받은 리뷰  ", false),
		isAd:       true,
		status:     http.StatusOK,
		wantStatus: ko.SavedAd,
		wantPosted: true,
	}, {
		name:       "labelled as genuine",
		box:        view.NewTextBox("솔직한 후기", false),
		status:     http.StatusOK,
		wantStatus: ko.SavedGenuine,
		wantPosted: true,
	}, {
		name:       "placeholder flag",
		box:        view.NewTextBox(ko.Placeholder, true),
		status:     http.StatusOK,
		wantStatus: ko.SelectFirst,
		wantErr:    ErrNoSelection,
	}, {
		name:       "empty",
		box:        view.NewTextBox("   ", false),
		status:     http.StatusOK,
		wantStatus: ko.SelectFirst,
		wantErr:    ErrNoSelection,
	}, {
		name:       "backend failure",
		box:        view.NewTextBox("솔직한 후기", false),
		status:     http.StatusInternalServerError,
		wantStatus: ko.SaveFailed,
		wantPosted: true,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, posted := feedbackServer(t, tc.status)
			client := reviewapi.NewClient(
				reviewapi.Config{BaseURL: srv.URL}, nil,
			)
			texts := i18n.NewPresenter(i18n.PresenterConfig{
				Store: kvstore.NewMemStore(),
			})

			status := &statusLine{}
			page := NewPage(client, tc.box, texts, status, nil)
			err := page.Submit(context.Background(), tc.isAd)

			require.Equal(t, tc.wantStatus, status.text)

			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.status != http.StatusOK:
				var statusErr *reviewapi.StatusError
				require.ErrorAs(t, err, &statusErr)
				require.Equal(t, tc.status, statusErr.StatusCode)
			default:
				require.NoError(t, err)
			}

			if tc.wantPosted {
				require.Equal(t, tc.isAd, posted.IsAd)
				require.NotEmpty(t, posted.Text)
				require.NotContains(t, posted.Text, "  ")
			} else {
				require.Empty(t, posted.Text)
			}
		})
	}
}
