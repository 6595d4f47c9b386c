package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/dediary/internal/common"
)

// CID is an opaque content identifier assigned by the pinning service.
type CID string

func (c CID) String() string { return string(c) }

// ParseCID trims s and rejects values that cannot be used as a gateway path
// segment. The identifier itself stays opaque: no multihash decoding.
func ParseCID(s string) (CID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", common.ErrInvalidCID)
	}
	if i := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == '?' || r == '#'
	}); i >= 0 {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidCID, s)
	}
	return CID(s), nil
}

// AssetRef is the ipfs:// URI used when a CID is referenced by a token.
func (c CID) AssetRef() string {
	return common.IPFSScheme + string(c)
}

// PinRecord is one row of the pinning service listing.
type PinRecord struct {
	CID      CID
	Owner    string
	Name     string
	PinnedAt time.Time
}

// UniqueCIDs returns the CIDs of records in order, first occurrence wins.
func UniqueCIDs(records []PinRecord) []CID {
	seen := make(map[CID]struct{}, len(records))
	out := make([]CID, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.CID]; ok {
			continue
		}
		seen[r.CID] = struct{}{}
		out = append(out, r.CID)
	}
	return out
}
