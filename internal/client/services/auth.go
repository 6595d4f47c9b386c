// Package services contains application services for the DeDiary client.
// This file defines the session service: resolving the wallet identity and
// checking that the pinning service accepts our credentials.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dediary/internal/client/pinning"
	"github.com/dmitrijs2005/dediary/internal/client/wallet"
	"github.com/dmitrijs2005/dediary/internal/common"
)

// Session identifies the user for one CLI run.
type Session struct {
	Address     string
	NetworkID   int
	DisplayName string
}

// AuthService defines identity operations for the CLI.
//
// Contract:
//   - Connect: read the primary wallet address and network.
//   - Ping: check pinning service reachability; rejected credentials are
//     reported as common.ErrAuthFailure.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Connect(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
}

type authService struct {
	bridge      wallet.Bridge
	pinger      pinning.Pinger
	displayName string
}

// NewAuthService constructs an AuthService over a wallet bridge and the
// pinning provider's liveness probe.
func NewAuthService(bridge wallet.Bridge, pinger pinning.Pinger, displayName string) AuthService {
	return &authService{bridge: bridge, pinger: pinger, displayName: displayName}
}

func (a *authService) Connect(ctx context.Context) (Session, error) {
	addr, err := wallet.PrimaryAddress(ctx, a.bridge)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", common.ErrAuthFailure, err)
	}
	network, err := a.bridge.NetworkID(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: network id: %w", common.ErrAuthFailure, err)
	}
	return Session{Address: addr, NetworkID: network, DisplayName: a.displayName}, nil
}

func (a *authService) Ping(ctx context.Context) error {
	err := a.pinger.Ping(ctx)
	if errors.Is(err, common.ErrUnauthorized) {
		return fmt.Errorf("%w: %w", common.ErrAuthFailure, err)
	}
	return err
}
