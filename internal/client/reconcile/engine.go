// Package reconcile merges the pinning service listing and the on-device CID
// cache into one ordered view of entries.
//
// The remote listing is authoritative when it answers with at least one
// record. When it fails, or (by default) answers with nothing, the engine
// falls back to the CIDs cached on this device. Either way documents are
// resolved through the content fetcher, filtered, deduplicated by CID and
// sorted newest first. Reconcile never fails: degradation is reported in the
// View's Status.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/pinning"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
)

// LocalSource is the on-device list of published CIDs.
type LocalSource interface {
	List(ctx context.Context) []models.CID
}

// Resolver turns CIDs into entries, skipping the ones it cannot resolve.
type Resolver interface {
	FetchMany(ctx context.Context, cids []models.CID) []models.ReconciledEntry
}

type Options struct {
	// FallbackOnEmpty treats an empty remote listing like a failed one.
	FallbackOnEmpty bool
}

func DefaultOptions() Options {
	return Options{FallbackOnEmpty: true}
}

// Request selects what to reconcile. Owner narrows the remote listing; Keep
// filters resolved entries from either source. A nil Keep keeps everything.
type Request struct {
	Owner string
	Keep  Predicate
}

type Engine struct {
	remote   pinning.Lister
	local    LocalSource
	resolver Resolver
	opts     Options
	logger   logging.Logger
}

func New(remote pinning.Lister, local LocalSource, resolver Resolver, opts Options, logger logging.Logger) *Engine {
	return &Engine{
		remote:   remote,
		local:    local,
		resolver: resolver,
		opts:     opts,
		logger:   logger.With("module", "reconcile"),
	}
}

// Reconcile builds the view for req.
func (e *Engine) Reconcile(ctx context.Context, req Request) View {
	status := Status{RequestID: uuid.NewString()}
	log := e.logger.With("request_id", status.RequestID)

	keep := req.Keep
	if keep == nil {
		keep = All
	}

	cids, err := e.listRemote(ctx, req.Owner)
	switch {
	case err != nil:
		status.RemoteErr = fmt.Errorf("%w: %w", common.ErrRemoteUnavailable, err)
		log.Warn(ctx, "remote listing failed, using local cache", "error", err)
		cids = e.local.List(ctx)
		status.Source = SourceLocal
	case len(cids) == 0 && e.opts.FallbackOnEmpty:
		status.EmptyRemote = true
		log.Info(ctx, "remote listing empty, using local cache")
		cids = e.local.List(ctx)
		status.Source = SourceLocal
	default:
		status.Source = SourceRemote
	}

	cids = dedupe(cids)
	status.Listed = len(cids)
	if status.Source == SourceLocal && len(cids) == 0 {
		status.Source = SourceNone
	}

	resolved := e.resolver.FetchMany(ctx, cids)

	entries := make([]models.ReconciledEntry, 0, len(resolved))
	seen := make(map[models.CID]struct{}, len(resolved))
	for _, r := range resolved {
		if _, dup := seen[r.CID]; dup {
			continue
		}
		seen[r.CID] = struct{}{}
		if !keep(r) {
			status.Filtered++
			continue
		}
		entries = append(entries, r)
	}
	status.Resolved = len(seen)
	for _, c := range cids {
		if _, ok := seen[c]; !ok {
			status.Unresolvable++
		}
	}
	sortEntries(entries)

	log.Debug(ctx, "reconciled",
		"source", status.Source,
		"listed", status.Listed,
		"resolved", status.Resolved,
		"kept", len(entries),
	)
	return View{Entries: entries, Status: status}
}

func (e *Engine) listRemote(ctx context.Context, owner string) ([]models.CID, error) {
	if owner != "" {
		if ol, ok := e.remote.(pinning.OwnerLister); ok {
			recs, err := ol.ListByOwner(ctx, owner)
			if err != nil {
				return nil, err
			}
			return models.UniqueCIDs(recs), nil
		}
	}

	recs, err := e.remote.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if owner != "" {
		recs = pinning.FilterByOwner(recs, owner)
	}
	return models.UniqueCIDs(recs), nil
}

func dedupe(cids []models.CID) []models.CID {
	seen := make(map[models.CID]struct{}, len(cids))
	out := make([]models.CID, 0, len(cids))
	for _, c := range cids {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// sortEntries orders newest first, ties by CID ascending.
func sortEntries(entries []models.ReconciledEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Entry.CreatedAt.Equal(b.Entry.CreatedAt) {
			return a.Entry.CreatedAt.After(b.Entry.CreatedAt)
		}
		return a.CID < b.CID
	})
}
