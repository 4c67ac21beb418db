package reviewapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// TextRequest is the body of the summary and ad-score endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

// FeedbackRequest is the body of the feedback endpoint.
type FeedbackRequest struct {
	Text string `json:"text"`
	IsAd bool   `json:"is_ad"`
}

// SummaryResponse is returned by the summary endpoint.
type SummaryResponse struct {
	Reply  string `json:"reply"`
	Cached bool   `json:"cached"`
}

// AdScoreResponse is returned by the ad-score endpoint.
type AdScoreResponse struct {
	ProbAd Probability `json:"prob_ad"`
	IsAd   *bool       `json:"is_ad,omitempty"`
	Cached bool        `json:"cached"`
}

// Probability is a leniently decoded number. JSON numbers and numeric
// strings are accepted; null, missing or anything else decodes to "absent".
type Probability struct {
	value fn.Option[float64]
}

// NewProbability wraps v as a present probability.
func NewProbability(v float64) Probability {
	return Probability{value: fn.Some(v)}
}

// Value returns the probability, or 0 when it is absent.
func (p Probability) Value() float64 {
	return p.value.UnwrapOr(0)
}

// IsPresent reports whether the backend sent a usable number.
func (p Probability) IsPresent() bool {
	return p.value.IsSome()
}

// UnmarshalJSON implements json.Unmarshaler. It never fails, so a malformed
// field does not discard the rest of the response.
func (p *Probability) UnmarshalJSON(data []byte) error {
	p.value = fn.None[float64]()

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		p.value = fn.Some(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err == nil {
			p.value = fn.Some(v)
		}
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Probability) MarshalJSON() ([]byte, error) {
	if !p.value.IsSome() {
		return []byte("null"), nil
	}

	return json.Marshal(p.Value())
}
