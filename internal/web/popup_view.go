package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roasbeef/spotter/internal/feedback"
	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/popup"
	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/score"
	"github.com/roasbeef/spotter/internal/selection"
	"github.com/roasbeef/spotter/internal/view"
	"github.com/yuin/goldmark"
)

// popupView is the popup, evaluation and recommendation pages of one
// browser connection. Its session lives exactly as long as the connection.
type popupView struct {
	client *WSClient

	box       *view.TextBox
	presenter *i18n.Presenter
	session   *popup.Session
	ctrl      *popup.Controller
	loader    *selection.Loader
	eval      *feedback.Page
	recs      *recommend.Page

	// lang forces a language on open; empty uses the stored one.
	lang string
}

// newPopupView builds the per-connection state.
func (s *Server) newPopupView(client *WSClient) *popupView {
	v := &popupView{
		client: client,
		box:    view.NewTextBox("", false),
		lang:   s.cfg.Lang,
	}

	v.presenter = i18n.NewPresenter(i18n.PresenterConfig{
		Store: s.cfg.Store,
		View:  v,
		Input: v.box,
		Log:   s.log,
	})
	v.session = popup.NewSession(popup.SessionConfig{
		Backend: s.cfg.Backend,
		Cache:   s.cfg.Cache,
		Log:     s.log,
	})
	v.ctrl = popup.NewController(v.session, v, v.presenter, s.log)
	v.loader = selection.NewLoader(
		selection.SourceFunc(s.currentSelection), s.cfg.Store, v.box,
		v.presenter, s.log,
	)
	v.eval = feedback.NewPage(s.cfg.Feedback, v.box, v.presenter, v, s.log)
	v.recs = recommend.NewPage(
		s.cfg.Trigger, s.cfg.Recommendations, v, v.presenter, s.log,
	)

	return v
}

// open renders the initial language and selection.
func (v *popupView) open(ctx context.Context) error {
	var err error
	if v.lang != "" {
		err = v.presenter.Apply(ctx, v.presenter.Resolve(v.lang))
	} else {
		err = v.presenter.Init(ctx)
	}
	if err != nil {
		return err
	}

	if err := v.loader.Load(ctx); err != nil {
		return err
	}
	v.sendInput()

	return nil
}

func (v *popupView) close() {
	v.session.Close()
}

func (v *popupView) sendInput() {
	v.client.Send(&WSMessage{Type: WSMsgInput, Payload: map[string]any{
		"text":        v.box.Text(),
		"placeholder": v.box.IsPlaceholder(),
	}})
}

type submitData struct {
	Text *string `json:"text"`
}

type langData struct {
	Lang string `json:"lang"`
}

type feedbackData struct {
	IsAd bool `json:"is_ad"`
}

// handle runs one browser request.
func (v *popupView) handle(ctx context.Context, req wsRequest) error {
	switch req.Type {
	case WSReqSubmit:
		var data submitData
		if err := decodeData(req.Data, &data); err != nil {
			return err
		}

		// An omitted text submits the box as shown.
		text := v.box.Text()
		if data.Text != nil {
			text = *data.Text
			v.box.SetText(text, false)
		}

		_, err := v.ctrl.Submit(ctx, text)
		return err

	case WSReqLang:
		var data langData
		if err := decodeData(req.Data, &data); err != nil {
			return err
		}
		err := v.presenter.Apply(ctx, v.presenter.Resolve(data.Lang))
		v.sendInput()

		return err

	case WSReqToggle:
		err := v.presenter.Toggle(ctx)
		v.sendInput()

		return err

	case WSReqLoad:
		err := v.loader.Load(ctx)
		v.sendInput()

		return err

	case WSReqLoadEval:
		err := v.loader.LoadStored(ctx)
		v.sendInput()

		return err

	case WSReqFeedback:
		var data feedbackData
		if err := decodeData(req.Data, &data); err != nil {
			return err
		}

		// The status line already tells the user what happened.
		err := v.eval.Submit(ctx, data.IsAd)
		if errors.Is(err, feedback.ErrNoSelection) {
			return nil
		}

		return err

	case WSReqRecommend:
		_, err := v.recs.Run(ctx)
		if err != nil {
			v.client.log.Debug("Recommendations unavailable",
				"error", err)
		}

		return nil

	default:
		return fmt.Errorf("unknown message type: %s", req.Type)
	}
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid %T: %w", dst, err)
	}

	return nil
}

// renderMarkdown converts a backend reply to HTML. Replies are plain text
// or light markdown; raw HTML in them is not passed through.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return ""
	}

	return buf.String()
}

// SetDocumentLang implements i18n.View.
func (v *popupView) SetDocumentLang(lang i18n.Locale) {
	v.client.Send(&WSMessage{Type: WSMsgLang, Payload: map[string]any{
		"lang": lang,
	}})
}

// SetLabel implements i18n.View.
func (v *popupView) SetLabel(id i18n.LabelID, text string) {
	v.client.Send(&WSMessage{Type: WSMsgLabel, Payload: map[string]any{
		"id": id, "text": text,
	}})
}

// SetToggle implements i18n.View.
func (v *popupView) SetToggle(ariaLabel, shortCode string) {
	v.client.Send(&WSMessage{Type: WSMsgToggle, Payload: map[string]any{
		"aria_label": ariaLabel, "short_code": shortCode,
	}})
}

// SetResult implements popup.Display.
func (v *popupView) SetResult(text string) {
	v.client.Send(&WSMessage{Type: WSMsgResult, Payload: map[string]any{
		"text": text, "html": renderMarkdown(text),
	}})
}

// SetScore implements popup.Display.
func (v *popupView) SetScore(ind score.Indicator) {
	v.client.Send(&WSMessage{Type: WSMsgScore, Payload: map[string]any{
		"percent": ind.Percent, "band": ind.Band, "label": ind.Label,
	}})
}

// SetScoreMessage implements popup.Display.
func (v *popupView) SetScoreMessage(text string) {
	v.client.Send(&WSMessage{Type: WSMsgScoreMessage, Payload: map[string]any{
		"text": text,
	}})
}

// SetLoading implements popup.Display.
func (v *popupView) SetLoading(text string) {
	v.client.Send(&WSMessage{Type: WSMsgLoading, Payload: map[string]any{
		"text": text,
	}})
}

// SetStatus implements feedback.Status.
func (v *popupView) SetStatus(text string) {
	v.client.Send(&WSMessage{Type: WSMsgStatus, Payload: map[string]any{
		"text": text,
	}})
}

// SetMessage implements recommend.Display.
func (v *popupView) SetMessage(text string) {
	v.client.Send(&WSMessage{Type: WSMsgMessage, Payload: map[string]any{
		"text": text,
	}})
}

// SetItems implements recommend.Display.
func (v *popupView) SetItems(items []recommend.Item, strs i18n.Strings) {
	v.client.Send(&WSMessage{Type: WSMsgItems, Payload: map[string]any{
		"items": items,
		"fields": map[string]string{
			"store":  strs.StoreField,
			"reason": strs.ReasonField,
			"review": strs.ReviewField,
		},
	}})
}

var (
	_ i18n.View         = (*popupView)(nil)
	_ popup.Display     = (*popupView)(nil)
	_ feedback.Status   = (*popupView)(nil)
	_ recommend.Display = (*popupView)(nil)
)
