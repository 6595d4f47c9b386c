// Package wallet abstracts the wallet extension that supplies the user's
// address. Signing and submitting transactions is out of scope.
package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dediary/internal/common"
)

// Bridge is the subset of a wallet connector the client needs.
type Bridge interface {
	NetworkID(ctx context.Context) (int, error)
	UsedAddresses(ctx context.Context) ([]string, error)
	UnusedAddresses(ctx context.Context) ([]string, error)
}

// StaticBridge serves addresses from configuration.
type StaticBridge struct {
	Network int
	Used    []string
	Unused  []string
}

func (b *StaticBridge) NetworkID(context.Context) (int, error) { return b.Network, nil }

func (b *StaticBridge) UsedAddresses(context.Context) ([]string, error) {
	return append([]string(nil), b.Used...), nil
}

func (b *StaticBridge) UnusedAddresses(context.Context) ([]string, error) {
	return append([]string(nil), b.Unused...), nil
}

// PrimaryAddress returns the first used address, else the first unused one,
// normalized. It fails with common.ErrNoAddress when the wallet has none.
func PrimaryAddress(ctx context.Context, b Bridge) (string, error) {
	used, err := b.UsedAddresses(ctx)
	if err != nil {
		return "", fmt.Errorf("used addresses: %w", err)
	}
	if a := firstNonEmpty(used); a != "" {
		return a, nil
	}

	unused, err := b.UnusedAddresses(ctx)
	if err != nil {
		return "", fmt.Errorf("unused addresses: %w", err)
	}
	if a := firstNonEmpty(unused); a != "" {
		return a, nil
	}
	return "", common.ErrNoAddress
}

func firstNonEmpty(addrs []string) string {
	for _, a := range addrs {
		if n := NormalizeAddress(a); n != "" {
			return n
		}
	}
	return ""
}

// NormalizeAddress trims and lower-cases an address so that two renderings
// of the same address compare equal.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameAddress reports whether a and b are the same non-empty address.
func SameAddress(a, b string) bool {
	na := NormalizeAddress(a)
	return na != "" && na == NormalizeAddress(b)
}
