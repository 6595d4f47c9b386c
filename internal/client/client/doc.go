// Package client bootstraps the local persistence used by the DeDiary CLI.
//
// InitDatabase opens the SQLite file, applies the embedded goose migrations
// (see internal/client/migrations) and returns the handle; NewRepositories
// binds the metadata (key/value) and documents (CID → body) repositories to
// it. The metadata table holds the local CID cache under a single key.
package client
