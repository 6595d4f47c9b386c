// Package minting requests commemorative tokens that reference a pinned
// entry. Chain interaction happens behind the minting service.
package minting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/dediary/internal/netx"
)

type Minter interface {
	Mint(ctx context.Context, address, assetRef, name string) (string, error)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type mintRequest struct {
	Address  string `json:"address"`
	AssetRef string `json:"assetRef"`
	Name     string `json:"name,omitempty"`
}

type mintResponse struct {
	TxHash string `json:"txHash"`
}

// Mint asks the service to mint a token for assetRef (an ipfs:// URI) to
// address and returns the transaction hash.
func (c *Client) Mint(ctx context.Context, address, assetRef, name string) (string, error) {
	var resp mintResponse
	err := netx.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/mint", netx.BearerHeader(c.token),
		mintRequest{Address: address, AssetRef: assetRef, Name: name}, &resp)
	if err != nil {
		return "", fmt.Errorf("mint: %w", err)
	}
	if resp.TxHash == "" {
		return "", errors.New("mint: empty transaction hash")
	}
	return resp.TxHash, nil
}
