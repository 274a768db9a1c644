// Package mediastore is a thin client for the media storage provider's
// admin and delivery surfaces. Uploads never pass through this process;
// clients upload directly with a signature issued by the upload service.
// This package covers the server-side calls that remain: minting signed
// delivery URLs, destroying objects, and probing whether an object exists.
package mediastore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/signing"
)

// Config carries the provider account settings. CloudName, APIKey and
// APISecret are mandatory; the base URLs have production defaults.
type Config struct {
	CloudName       string
	APIKey          string
	APISecret       string
	APIBaseURL      string
	DeliveryBaseURL string
}

const (
	defaultAPIBaseURL      = "https://api.mediastash.io"
	defaultDeliveryBaseURL = "https://media.mediastash.io"
)

type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

// New validates the provider credentials and returns a client. Missing
// credentials are a misconfiguration reported eagerly, never a reason to
// sign requests with empty secrets.
func New(cfg Config) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("media store credentials missing: %w", common.ErrMisconfigured)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DeliveryBaseURL == "" {
		cfg.DeliveryBaseURL = defaultDeliveryBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.DeliveryBaseURL = strings.TrimRight(cfg.DeliveryBaseURL, "/")

	return &Client{cfg: cfg, http: &http.Client{}, now: time.Now}, nil
}

// SignedDeliveryURL mints a time-boxed playback URL for objectID, normalized
// to an mp4 rendition. The token covers the transformation path and the
// expiry, so neither can be altered without invalidating the URL. Minted
// fresh on every call and never persisted.
func (c *Client) SignedDeliveryURL(objectID string, ttl time.Duration) (string, error) {
	if objectID == "" {
		return "", fmt.Errorf("empty object id: %w", common.ErrInvalidRequest)
	}

	expires := c.now().Add(ttl).Unix()
	rendition := "f_mp4/" + objectID + ".mp4"
	token := signing.URLToken(rendition+"|"+strconv.FormatInt(expires, 10), c.cfg.APISecret)

	return fmt.Sprintf("%s/%s/video/upload/s--%s--/%s?expires_at=%d",
		c.cfg.DeliveryBaseURL, c.cfg.CloudName, token, rendition, expires), nil
}

type apiResponse struct {
	Result string `json:"result"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Destroy irreversibly deletes objectID at the provider. With invalidate
// set, cached CDN copies are purged as well. A missing object maps to
// ErrNotFound; other provider failures map to ErrUpstream.
func (c *Client) Destroy(ctx context.Context, objectID string, invalidate bool) error {
	params := map[string]string{
		"public_id": objectID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	if invalidate {
		params["invalidate"] = "true"
	}

	resp, err := c.postSigned(ctx, "/resources/destroy", params)
	if err != nil {
		return err
	}

	switch resp.Result {
	case "ok":
		return nil
	case "not found":
		return fmt.Errorf("object %q: %w", objectID, common.ErrNotFound)
	default:
		return fmt.Errorf("destroy %q: provider returned %q: %w", objectID, resp.Result, common.ErrUpstream)
	}
}

// Exists probes whether objectID is still present at the provider.
// Used by the reconciliation sweep.
func (c *Client) Exists(ctx context.Context, objectID string) (bool, error) {
	params := map[string]string{
		"public_id": objectID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}

	resp, err := c.postSigned(ctx, "/resources/exists", params)
	if err != nil {
		return false, err
	}

	switch resp.Result {
	case "ok":
		return true, nil
	case "not found":
		return false, nil
	default:
		return false, fmt.Errorf("exists %q: provider returned %q: %w", objectID, resp.Result, common.ErrUpstream)
	}
}

// postSigned sends a form POST to an admin endpoint with the standard
// api_key/signature envelope. The signature covers every parameter except
// the api_key, mirroring what the provider recomputes.
func (c *Client) postSigned(ctx context.Context, endpoint string, params map[string]string) (*apiResponse, error) {
	sig, err := signing.Digest(params, c.cfg.APISecret)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", c.cfg.APIKey)
	form.Set("signature", sig)

	reqURL := c.cfg.APIBaseURL + "/v1/" + c.cfg.CloudName + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media store call failed: %v: %w", err, common.ErrUpstream)
	}
	defer httpResp.Body.Close()

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("media store response unreadable: %v: %w", err, common.ErrUpstream)
	}

	if httpResp.StatusCode == http.StatusNotFound {
		resp.Result = "not found"
		return &resp, nil
	}
	if httpResp.StatusCode != http.StatusOK {
		msg := resp.Error.Message
		if msg == "" {
			msg = httpResp.Status
		}
		return nil, fmt.Errorf("media store rejected call: %s: %w", msg, common.ErrUpstream)
	}

	return &resp, nil
}
