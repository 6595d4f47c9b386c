// Package models defines the DeDiary document schema and the records that
// flow between the cache, the pinning service and the reconciliation engine.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dediary/internal/common"
)

// Sentiment is the classifier verdict attached to an entry.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entry is a published diary document. Once pinned it is immutable: editing
// publishes a new document under a new CID.
type Entry struct {
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	Mood      Mood       `json:"mood,omitempty"`
	Location  string     `json:"location,omitempty"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`

	ForSale bool    `json:"forSale,omitempty"`
	Price   float64 `json:"price,omitempty"`

	Owner           string `json:"owner,omitempty"`
	DisplayName     string `json:"displayName,omitempty"`
	ShowOwner       bool   `json:"showOwner,omitempty"`
	ShowDisplayName bool   `json:"showDisplayName,omitempty"`
}

// Validate checks the fields every published entry must carry.
// The returned error wraps common.ErrInvalidEntry.
func (e Entry) Validate() error {
	var errs []error

	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if strings.TrimSpace(e.Body) == "" {
		errs = append(errs, errors.New("body is required"))
	}
	if e.CreatedAt.IsZero() {
		errs = append(errs, errors.New("createdAt is required"))
	}
	if e.Mood != "" && !e.Mood.Known() {
		errs = append(errs, fmt.Errorf("unknown mood %q", e.Mood))
	}
	if s := e.Sentiment; s != nil {
		if strings.TrimSpace(s.Label) == "" {
			errs = append(errs, errors.New("sentiment label is required"))
		}
		if s.Score < 0 || s.Score > 1 {
			errs = append(errs, fmt.Errorf("sentiment score %v out of [0,1]", s.Score))
		}
	}
	if e.Price < 0 {
		errs = append(errs, errors.New("price must not be negative"))
	}
	if e.ForSale && e.Price <= 0 {
		errs = append(errs, errors.New("entries for sale need a positive price"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrInvalidEntry, errors.Join(errs...))
}

// PublicOwner returns the owner address if the author chose to show it.
func (e Entry) PublicOwner() string {
	if e.ShowOwner {
		return e.Owner
	}
	return ""
}

// PublicName returns the display name if the author chose to show it.
func (e Entry) PublicName() string {
	if e.ShowDisplayName {
		return e.DisplayName
	}
	return ""
}

// DecodeEntry parses and validates a fetched document. Unknown fields are
// tolerated so newer clients can extend the schema.
func DecodeEntry(b []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", common.ErrInvalidEntry, err)
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// ReconciledEntry pairs a resolved entry with the CID it was fetched under.
type ReconciledEntry struct {
	CID   CID
	Entry Entry
}
