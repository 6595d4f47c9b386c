// Package cli provides the interactive DeDiary command-line client.
//
// It wires configuration, the local database, the pinning provider, content
// gateways and the reconciliation engine into an interactive REPL. A
// background watcher probes the pinning service and the prompt shows the
// wallet address and online/offline mode.
//
// Key features:
//   - Write, edit and forget entries
//   - List your own entries and other users' feed, with a warning when the
//     view comes from this device's cache instead of the remote listing
//   - Show a single entry by CID
//   - Mint a token referencing an entry
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
