package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dediary/internal/client/classifier"
	"github.com/dmitrijs2005/dediary/internal/client/gateway"
	"github.com/dmitrijs2005/dediary/internal/client/minting"
	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/pinning"
	"github.com/dmitrijs2005/dediary/internal/client/reconcile"
	"github.com/dmitrijs2005/dediary/internal/client/wallet"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
)

// Draft carries what the user typed; the service fills in the rest.
type Draft struct {
	Title    string
	Body     string
	Mood     models.Mood
	Location string

	ForSale bool
	Price   float64

	ShowOwner       bool
	ShowDisplayName bool
}

type EntryService interface {
	Publish(ctx context.Context, draft Draft) (models.CID, error)
	Edit(ctx context.Context, old models.CID, draft Draft) (models.CID, error)
	Forget(ctx context.Context, cid models.CID) error
	Mine(ctx context.Context) (reconcile.View, error)
	Feed(ctx context.Context) reconcile.View
	Show(ctx context.Context, cid models.CID) (models.Entry, error)
	Mint(ctx context.Context, cid models.CID) (string, error)
	CachedCIDs(ctx context.Context) []models.CID
	ClearCache(ctx context.Context) error
}

// CIDCache is the subset of cidcache.Cache used by the service.
type CIDCache interface {
	List(ctx context.Context) []models.CID
	Add(ctx context.Context, cid models.CID) error
	Remove(ctx context.Context, cid models.CID) error
	Clear(ctx context.Context) error
	Contains(ctx context.Context, cid models.CID) bool
}

// DocumentStore is the on-device body cache written on publish.
type DocumentStore interface {
	gateway.Sink
	Delete(ctx context.Context, cid models.CID) error
}

type Reconciler interface {
	Reconcile(ctx context.Context, req reconcile.Request) reconcile.View
}

type Fetcher interface {
	Fetch(ctx context.Context, cid models.CID) (models.Entry, error)
}

// EntryDeps wires an entry service. Classifier, Minter, Unpinner and
// Documents are optional.
type EntryDeps struct {
	Session    Session
	Uploader   pinning.Uploader
	Unpinner   pinning.Unpinner
	Reconciler Reconciler
	Fetcher    Fetcher
	Cache      CIDCache
	Documents  DocumentStore
	Classifier classifier.Classifier
	Minter     minting.Minter
	Logger     logging.Logger

	// UnpinSuperseded unpins the old document after a successful edit.
	UnpinSuperseded bool
}

type entryService struct {
	EntryDeps
	now func() time.Time
}

func NewEntryService(deps EntryDeps) EntryService {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	deps.Logger = deps.Logger.With("module", "entries")
	return &entryService{EntryDeps: deps, now: time.Now}
}

// Publish classifies, pins and caches a new entry. Classifier failures are
// logged and the entry is published without a sentiment.
func (s *entryService) Publish(ctx context.Context, d Draft) (models.CID, error) {
	e := models.Entry{
		Title:           strings.TrimSpace(d.Title),
		Body:            strings.TrimSpace(d.Body),
		CreatedAt:       s.now().UTC().Truncate(time.Second),
		Mood:            d.Mood,
		Location:        strings.TrimSpace(d.Location),
		ForSale:         d.ForSale,
		Price:           d.Price,
		Owner:           s.Session.Address,
		DisplayName:     s.Session.DisplayName,
		ShowOwner:       d.ShowOwner,
		ShowDisplayName: d.ShowDisplayName,
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	if s.Classifier != nil {
		sent, err := s.Classifier.Classify(ctx, e.Body)
		if err != nil {
			s.Logger.Warn(ctx, "sentiment classification failed, publishing without it", "error", err)
		} else {
			e.Sentiment = &sent
		}
	}

	name := fmt.Sprintf("dediary-%s", e.CreatedAt.Format("20060102T150405Z"))
	cid, err := s.Uploader.UploadJSON(ctx, name, e.Owner, e)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrPublishFailure, err)
	}

	if s.Documents != nil {
		if body, err := json.Marshal(e); err == nil {
			if err := s.Documents.Put(ctx, cid, body); err != nil {
				s.Logger.Warn(ctx, "document cache write failed", "cid", cid, "error", err)
			}
		}
	}
	if err := s.Cache.Add(ctx, cid); err != nil {
		s.Logger.Warn(ctx, "local cache update failed", "cid", cid, "error", err)
	}

	s.Logger.Info(ctx, "entry published", "cid", cid)
	return cid, nil
}

// Edit publishes draft as a new entry and forgets old. Entries owned by
// someone else cannot be edited.
func (s *entryService) Edit(ctx context.Context, old models.CID, d Draft) (models.CID, error) {
	prev, err := s.Fetcher.Fetch(ctx, old)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", old, err)
	}
	if prev.Owner != "" && !wallet.SameAddress(prev.Owner, s.Session.Address) {
		return "", fmt.Errorf("%w: %s belongs to another address", common.ErrAuthFailure, old)
	}

	cid, err := s.Publish(ctx, d)
	if err != nil {
		return "", err
	}
	if cid == old {
		return cid, nil
	}

	if s.Cache.Contains(ctx, old) {
		if err := s.Cache.Remove(ctx, old); err != nil {
			s.Logger.Warn(ctx, "local cache update failed", "cid", old, "error", err)
		}
	} else {
		s.Logger.Debug(ctx, "superseded entry was not cached on this device", "cid", old)
	}
	if s.UnpinSuperseded && s.Unpinner != nil {
		if err := s.Unpinner.Unpin(ctx, old); err != nil {
			s.Logger.Warn(ctx, "unpin of superseded entry failed", "cid", old, "error", err)
		}
	}
	return cid, nil
}

// Forget removes cid and its stored body from this device. The pinned
// document stays.
func (s *entryService) Forget(ctx context.Context, cid models.CID) error {
	if err := s.Cache.Remove(ctx, cid); err != nil {
		return fmt.Errorf("forget %s: %w", cid, err)
	}
	if s.Documents != nil {
		if err := s.Documents.Delete(ctx, cid); err != nil {
			return fmt.Errorf("forget %s: %w", cid, err)
		}
	}
	return nil
}

func (s *entryService) Mine(ctx context.Context) (reconcile.View, error) {
	addr := s.Session.Address
	if addr == "" {
		return reconcile.View{}, common.ErrNoAddress
	}
	return s.Reconciler.Reconcile(ctx, reconcile.Request{Owner: addr, Keep: reconcile.OwnedBy(addr)}), nil
}

// Feed lists other users' entries.
func (s *entryService) Feed(ctx context.Context) reconcile.View {
	return s.Reconciler.Reconcile(ctx, reconcile.Request{Keep: reconcile.NotOwnedBy(s.Session.Address)})
}

func (s *entryService) Show(ctx context.Context, cid models.CID) (models.Entry, error) {
	return s.Fetcher.Fetch(ctx, cid)
}

// Mint requests a token referencing cid for the session address.
func (s *entryService) Mint(ctx context.Context, cid models.CID) (string, error) {
	if s.Minter == nil {
		return "", errors.New("minting service is not configured")
	}
	if s.Session.Address == "" {
		return "", common.ErrNoAddress
	}
	e, err := s.Fetcher.Fetch(ctx, cid)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", cid, err)
	}
	tx, err := s.Minter.Mint(ctx, s.Session.Address, cid.AssetRef(), e.Title)
	if err != nil {
		return "", err
	}
	s.Logger.Info(ctx, "token minted", "cid", cid, "tx", tx)
	return tx, nil
}

func (s *entryService) CachedCIDs(ctx context.Context) []models.CID {
	return s.Cache.List(ctx)
}

func (s *entryService) ClearCache(ctx context.Context) error {
	return s.Cache.Clear(ctx)
}
