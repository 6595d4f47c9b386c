package documents

import "context"

// Repository stores raw document bodies by CID.
type Repository interface {
	// Get returns the stored body or common.ErrorNotFound.
	Get(ctx context.Context, cid string) ([]byte, error)

	// Put stores body under cid unless a body is already stored.
	Put(ctx context.Context, cid string, body []byte) error

	// Delete removes the body for cid; missing rows are not an error.
	Delete(ctx context.Context, cid string) error
}
