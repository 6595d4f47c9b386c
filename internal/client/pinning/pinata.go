package pinning

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/wallet"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
	"github.com/dmitrijs2005/dediary/internal/netx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultPinataURL = "https://api.pinata.cloud"

	ownerKey = "owner"

	pinListPageLimit = 1000
	// pinListMaxPages stops pagination against a misbehaving server.
	pinListMaxPages = 100
)

// PinataClient implements Service over the Pinata REST API.
type PinataClient struct {
	baseURL string
	jwt     string
	http    *http.Client
	logger  logging.Logger
	now     func() time.Time
}

func NewPinataClient(baseURL, token string, timeout time.Duration, logger logging.Logger) *PinataClient {
	if baseURL == "" {
		baseURL = DefaultPinataURL
	}
	return &PinataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		jwt:     strings.TrimSpace(token),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("module", "pinata"),
		now:     time.Now,
	}
}

// checkToken rejects a missing, malformed or expired JWT without a network
// round trip. The signature is not verified: only Pinata can do that.
func (c *PinataClient) checkToken() error {
	if c.jwt == "" {
		return fmt.Errorf("%w: pinata jwt is not configured", common.ErrUnauthorized)
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.jwt, claims); err != nil {
		return fmt.Errorf("%w: malformed pinata jwt: %w", common.ErrUnauthorized, err)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(c.now()) {
		return fmt.Errorf("%w: pinata jwt expired at %s", common.ErrUnauthorized, claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (c *PinataClient) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.checkToken(); err != nil {
		return err
	}
	return netx.DoJSON(ctx, c.http, method, c.baseURL+path, netx.BearerHeader(c.jwt), in, out)
}

type pinataMetadata struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

type pinJSONRequest struct {
	Content  any            `json:"pinataContent"`
	Metadata pinataMetadata `json:"pinataMetadata"`
}

type pinJSONResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// UploadJSON pins document with the owner recorded in the pin metadata so
// listings can be filtered server-side.
func (c *PinataClient) UploadJSON(ctx context.Context, name, owner string, document any) (models.CID, error) {
	req := pinJSONRequest{Content: document, Metadata: pinataMetadata{Name: name}}
	if o := wallet.NormalizeAddress(owner); o != "" {
		req.Metadata.KeyValues = map[string]string{ownerKey: o}
	}

	var resp pinJSONResponse
	if err := c.do(ctx, http.MethodPost, "/pinning/pinJSONToIPFS", req, &resp); err != nil {
		return "", fmt.Errorf("pin json: %w", err)
	}
	cid, err := models.ParseCID(resp.IpfsHash)
	if err != nil {
		return "", fmt.Errorf("pin json: %w", err)
	}
	return cid, nil
}

type pinListRow struct {
	IpfsPinHash string         `json:"ipfs_pin_hash"`
	DatePinned  time.Time      `json:"date_pinned"`
	Metadata    pinListRowMeta `json:"metadata"`
}

type pinListRowMeta struct {
	Name      string         `json:"name"`
	KeyValues map[string]any `json:"keyvalues"`
}

type pinListResponse struct {
	Count int          `json:"count"`
	Rows  []pinListRow `json:"rows"`
}

func (c *PinataClient) ListAll(ctx context.Context) ([]models.PinRecord, error) {
	return c.list(ctx, "")
}

// ListByOwner asks Pinata to filter on the owner pin metadata.
func (c *PinataClient) ListByOwner(ctx context.Context, owner string) ([]models.PinRecord, error) {
	return c.list(ctx, wallet.NormalizeAddress(owner))
}

func (c *PinataClient) list(ctx context.Context, owner string) ([]models.PinRecord, error) {
	var out []models.PinRecord

	for page := 0; page < pinListMaxPages; page++ {
		q := url.Values{}
		q.Set("status", "pinned")
		q.Set("pageLimit", strconv.Itoa(pinListPageLimit))
		q.Set("pageOffset", strconv.Itoa(page*pinListPageLimit))
		if owner != "" {
			filter, err := ownerFilter(owner)
			if err != nil {
				return nil, fmt.Errorf("pin list: %w", err)
			}
			q.Set("metadata[keyvalues]", filter)
		}

		var resp pinListResponse
		if err := c.do(ctx, http.MethodGet, "/data/pinList?"+q.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("pin list: %w", err)
		}

		for _, row := range resp.Rows {
			cid, err := models.ParseCID(row.IpfsPinHash)
			if err != nil {
				c.logger.Debug(ctx, "skipping pin with bad hash", "hash", row.IpfsPinHash)
				continue
			}
			rowOwner, _ := row.Metadata.KeyValues[ownerKey].(string)
			out = append(out, models.PinRecord{
				CID:      cid,
				Owner:    rowOwner,
				Name:     row.Metadata.Name,
				PinnedAt: row.DatePinned,
			})
		}

		seen := (page + 1) * pinListPageLimit
		if len(resp.Rows) < pinListPageLimit || (resp.Count > 0 && seen >= resp.Count) {
			c.logger.Debug(ctx, "pin list complete", "records", len(out), "pages", page+1)
			return out, nil
		}
	}

	c.logger.Warn(ctx, "pin list truncated", "records", len(out), "pages", pinListMaxPages)
	return out, nil
}

// ownerFilter renders the pinList keyvalues query matching owner exactly.
func ownerFilter(owner string) (string, error) {
	b, err := json.Marshal(map[string]any{
		ownerKey: map[string]string{"value": owner, "op": "eq"},
	})
	if err != nil {
		return "", fmt.Errorf("encode owner filter: %w", err)
	}
	return string(b), nil
}

func (c *PinataClient) Unpin(ctx context.Context, cid models.CID) error {
	if err := c.do(ctx, http.MethodDelete, "/pinning/unpin/"+url.PathEscape(string(cid)), nil, nil); err != nil {
		return fmt.Errorf("unpin %s: %w", cid, err)
	}
	return nil
}

// Ping calls the authentication test endpoint.
func (c *PinataClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/data/testAuthentication", nil, nil)
}
