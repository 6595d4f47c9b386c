// Package classifier calls a Hugging Face style text-classification
// endpoint to label the sentiment of an entry.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/netx"
)

// ErrNoLabels is returned when the endpoint answers without any label.
var ErrNoLabels = errors.New("classifier returned no labels")

type Classifier interface {
	Classify(ctx context.Context, text string) (models.Sentiment, error)
}

type Client struct {
	url   string
	token string
	http  *http.Client
}

func New(url, token string, timeout time.Duration) *Client {
	return &Client{url: url, token: token, http: &http.Client{Timeout: timeout}}
}

type label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest-scoring label, lower-cased.
func (c *Client) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	var raw json.RawMessage
	err := netx.DoJSON(ctx, c.http, http.MethodPost, c.url, netx.BearerHeader(c.token),
		map[string]string{"inputs": text}, &raw)
	if err != nil {
		return models.Sentiment{}, fmt.Errorf("classify: %w", err)
	}

	labels, err := decodeLabels(raw)
	if err != nil {
		return models.Sentiment{}, fmt.Errorf("classify: %w", err)
	}
	return best(labels)
}

// decodeLabels accepts both [[{label,score}...]] and [{label,score}...].
func decodeLabels(raw json.RawMessage) ([]label, error) {
	var nested [][]label
	if err := json.Unmarshal(raw, &nested); err == nil {
		var out []label
		for _, l := range nested {
			out = append(out, l...)
		}
		return out, nil
	}

	var flat []label
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	return flat, nil
}

func best(labels []label) (models.Sentiment, error) {
	var top *label
	for i := range labels {
		l := &labels[i]
		if strings.TrimSpace(l.Label) == "" {
			continue
		}
		if top == nil || l.Score > top.Score {
			top = l
		}
	}
	if top == nil {
		return models.Sentiment{}, ErrNoLabels
	}
	return models.Sentiment{
		Label: strings.ToLower(strings.TrimSpace(top.Label)),
		Score: min(max(top.Score, 0), 1),
	}, nil
}
