// Package gateway resolves CIDs to entry documents through an ordered list
// of content gateways: public IPFS HTTP gateways and the on-device document
// cache.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/repositories/documents"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/netx"
)

// LocalName is the name of the on-device gateway.
const LocalName = "local"

// Gateway returns the raw document stored under a CID.
type Gateway interface {
	Name() string
	Fetch(ctx context.Context, cid models.CID) ([]byte, error)
}

// HTTPGateway fetches {base}/{cid} from a path-style IPFS gateway.
type HTTPGateway struct {
	name  string
	base  string
	http  *http.Client
	limit int64
}

// NewHTTPGateway returns a gateway for base, e.g. "https://ipfs.io/ipfs".
// Bodies larger than limit bytes are rejected; limit <= 0 disables the check.
func NewHTTPGateway(base string, timeout time.Duration, limit int64) *HTTPGateway {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	name := base
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		name = u.Host
	}
	return &HTTPGateway{
		name:  name,
		base:  base,
		http:  &http.Client{Timeout: timeout},
		limit: limit,
	}
}

func (g *HTTPGateway) Name() string { return g.name }

func (g *HTTPGateway) Fetch(ctx context.Context, cid models.CID) ([]byte, error) {
	b, err := netx.GetBytes(ctx, g.http, g.base+"/"+url.PathEscape(string(cid)), g.limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	return b, nil
}

// LocalGateway serves bodies previously fetched or published on this device.
type LocalGateway struct {
	repo documents.Repository
}

func NewLocalGateway(repo documents.Repository) *LocalGateway {
	return &LocalGateway{repo: repo}
}

func (g *LocalGateway) Name() string { return LocalName }

func (g *LocalGateway) Fetch(ctx context.Context, cid models.CID) ([]byte, error) {
	b, err := g.repo.Get(ctx, string(cid))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%s: %s not cached: %w", LocalName, cid, err)
	}
	return b, err
}

// Put stores a body; it makes LocalGateway usable as a Fetcher Sink.
func (g *LocalGateway) Put(ctx context.Context, cid models.CID, body []byte) error {
	return g.repo.Put(ctx, string(cid), body)
}

// Delete drops the stored body for cid; a missing body is not an error.
func (g *LocalGateway) Delete(ctx context.Context, cid models.CID) error {
	return g.repo.Delete(ctx, string(cid))
}
