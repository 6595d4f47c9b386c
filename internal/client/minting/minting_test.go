package minting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mint", r.URL.Path)
		assert.Equal(t, "Bearer m", r.Header.Get("Authorization"))

		var in mintRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, mintRequest{Address: "addr1", AssetRef: "ipfs://QmX", Name: "Day one"}, in)
		_, _ = w.Write([]byte(`{"txHash":"0xabc"}`))
	}))
	defer srv.Close()

	tx, err := New(srv.URL+"/", "m", time.Second).Mint(context.Background(), "addr1", "ipfs://QmX", "Day one")
	require.NoError(t, err)
	require.Equal(t, "0xabc", tx)
}

func TestMint_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Mint(context.Background(), "a", "ipfs://x", "")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = New(srv.URL, "tok", time.Second).Mint(context.Background(), "a", "ipfs://x", "")
	require.ErrorContains(t, err, "empty transaction hash")
}
