package gateway

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
)

const DefaultConcurrency = 8

// Sink receives bodies fetched from remote gateways. Content addressing makes
// a stored body valid forever.
type Sink interface {
	Put(ctx context.Context, cid models.CID, body []byte) error
}

// Fetcher resolves CIDs by trying its gateways in order.
type Fetcher struct {
	gateways    []Gateway
	sink        Sink
	concurrency int
	logger      logging.Logger
}

// NewFetcher returns a fetcher over gateways. sink may be nil.
func NewFetcher(gateways []Gateway, sink Sink, concurrency int, logger logging.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{
		gateways:    append([]Gateway(nil), gateways...),
		sink:        sink,
		concurrency: concurrency,
		logger:      logger.With("module", "gateway"),
	}
}

// Names returns the gateway names in the order they are tried.
func (f *Fetcher) Names() []string {
	out := make([]string, len(f.gateways))
	for i, g := range f.gateways {
		out[i] = g.Name()
	}
	return out
}

// Prefer returns a copy of f that tries the named gateway first. Unknown
// names leave the order unchanged.
func (f *Fetcher) Prefer(name string) *Fetcher {
	cp := *f
	cp.gateways = make([]Gateway, 0, len(f.gateways))
	var rest []Gateway
	for _, g := range f.gateways {
		if g.Name() == name {
			cp.gateways = append(cp.gateways, g)
		} else {
			rest = append(rest, g)
		}
	}
	cp.gateways = append(cp.gateways, rest...)
	return &cp
}

// Fetch resolves one CID to a valid entry. Documents that fail to parse or
// validate count as a miss on that gateway. When every gateway misses the
// error wraps common.ErrContentUnresolvable.
func (f *Fetcher) Fetch(ctx context.Context, cid models.CID) (models.Entry, error) {
	var errs []error
	for _, g := range f.gateways {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		body, err := g.Fetch(ctx, cid)
		if err != nil {
			f.logger.Debug(ctx, "gateway miss", "gateway", g.Name(), "cid", cid, "error", err)
			errs = append(errs, err)
			continue
		}
		entry, err := models.DecodeEntry(body)
		if err != nil {
			f.logger.Debug(ctx, "gateway returned malformed document", "gateway", g.Name(), "cid", cid, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
			continue
		}

		if f.sink != nil && g.Name() != LocalName {
			if err := f.sink.Put(ctx, cid, body); err != nil {
				f.logger.Warn(ctx, "document cache write failed", "cid", cid, "error", err)
			}
		}
		return entry, nil
	}

	if len(f.gateways) == 0 {
		errs = append(errs, errors.New("no gateways configured"))
	}
	return models.Entry{}, fmt.Errorf("%w: %s: %w", common.ErrContentUnresolvable, cid, errors.Join(errs...))
}

// FetchMany resolves cids concurrently and returns the resolved entries in
// input order. Unresolvable CIDs are logged and skipped.
func (f *Fetcher) FetchMany(ctx context.Context, cids []models.CID) []models.ReconciledEntry {
	entries := make([]models.Entry, len(cids))
	ok := make([]bool, len(cids))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, cid := range cids {
		g.Go(func() error {
			e, err := f.Fetch(ctx, cid)
			if err != nil {
				f.logger.Warn(ctx, "skipping unresolvable entry", "cid", cid, "error", err)
				return nil
			}
			entries[i], ok[i] = e, true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.ReconciledEntry, 0, len(cids))
	for i, cid := range cids {
		if ok[i] {
			out = append(out, models.ReconciledEntry{CID: cid, Entry: entries[i]})
		}
	}
	return out
}
