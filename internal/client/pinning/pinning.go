// Package pinning talks to the IPFS pinning service: it uploads entry
// documents and lists what is pinned. Two providers are supported: the
// Pinata REST API and S3-compatible IPFS buckets.
package pinning

import (
	"context"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/wallet"
)

// Lister returns every pinned document visible to the credentials.
type Lister interface {
	ListAll(ctx context.Context) ([]models.PinRecord, error)
}

// OwnerLister is implemented by providers that can filter by owner server-side.
type OwnerLister interface {
	ListByOwner(ctx context.Context, owner string) ([]models.PinRecord, error)
}

// Uploader pins a JSON document and returns its CID.
type Uploader interface {
	UploadJSON(ctx context.Context, name, owner string, document any) (models.CID, error)
}

type Unpinner interface {
	Unpin(ctx context.Context, cid models.CID) error
}

// Pinger checks that the service is reachable and the credentials work.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service is everything a full provider implements.
type Service interface {
	Lister
	OwnerLister
	Uploader
	Unpinner
	Pinger
}

// FilterByOwner keeps the records whose owner matches after normalization.
func FilterByOwner(records []models.PinRecord, owner string) []models.PinRecord {
	out := make([]models.PinRecord, 0, len(records))
	for _, r := range records {
		if wallet.SameAddress(r.Owner, owner) {
			out = append(out, r)
		}
	}
	return out
}
