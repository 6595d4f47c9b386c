package reconcile

import (
	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/wallet"
)

// Source names where the CIDs of a view came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	// SourceNone means neither source produced any CID.
	SourceNone Source = "none"
)

// Status describes how a view was produced.
type Status struct {
	RequestID string
	Source    Source

	// RemoteErr wraps common.ErrRemoteUnavailable when the listing failed.
	RemoteErr error
	// EmptyRemote is set when an empty listing triggered the fallback.
	EmptyRemote bool

	Listed       int
	Resolved     int
	Unresolvable int
	Filtered     int
}

// Degraded reports whether the view is not backed by a successful remote
// listing.
func (s Status) Degraded() bool {
	return s.RemoteErr != nil || s.Source == SourceLocal
}

// View is the ordered result of one reconciliation. It is never persisted.
type View struct {
	Entries []models.ReconciledEntry
	Status  Status
}

// Predicate decides whether a resolved entry belongs in a view.
type Predicate func(models.ReconciledEntry) bool

// All keeps every entry.
func All(models.ReconciledEntry) bool { return true }

// OwnedBy keeps entries whose owner is addr.
func OwnedBy(addr string) Predicate {
	return func(e models.ReconciledEntry) bool {
		return wallet.SameAddress(e.Entry.Owner, addr)
	}
}

// NotOwnedBy keeps entries of other users, including anonymous ones.
func NotOwnedBy(addr string) Predicate {
	return func(e models.ReconciledEntry) bool {
		return !wallet.SameAddress(e.Entry.Owner, addr)
	}
}
