// Package notify reports finished levels to an external progress service
// with the same signed query-string protocol the hosting platform uses for
// its callbacks.
package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Ashenafi-pixel/deepdive-fractions/ledger"
)

type Client struct {
	endpoint string
	secret   string
	http     *http.Client
}

type Response struct {
	Code       int             `json:"code"`
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Body       json.RawMessage `json:"-"`
	StatusCode int             `json:"-"`
}

// NewClient returns nil when endpoint is empty so callers can skip notifying.
func NewClient(endpoint, secret string) *Client {
	if endpoint == "" {
		return nil
	}
	return &Client{
		endpoint: endpoint,
		secret:   secret,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) call(ctx context.Context, params map[string]string) (*Response, error) {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	if c.secret != "" {
		values.Set("signature", Sign(c.secret, values))
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}
	u.RawQuery = values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	out := &Response{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&out.Body); err == nil {
		_ = json.Unmarshal(out.Body, out)
	}
	if resp.StatusCode >= 300 {
		return out, fmt.Errorf("notify %s: status %d", params["action"], resp.StatusCode)
	}
	return out, nil
}

// Sign is the HMAC-SHA256 of the values (action excluded) concatenated in key order.
func Sign(secret string, v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		if k == "action" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf := make([]byte, 0, 256)
	for _, k := range keys {
		buf = append(buf, v.Get(k)...)
	}
	m := hmac.New(sha256.New, []byte(secret))
	m.Write(buf)
	return hex.EncodeToString(m.Sum(nil))
}

// LevelResult sends one finished level.
func (c *Client) LevelResult(ctx context.Context, r *ledger.Result) (*Response, error) {
	return c.call(ctx, map[string]string{
		"action":     "level_result",
		"session_id": r.SessionID,
		"level":      strconv.Itoa(r.Level),
		"status":     string(r.Status),
		"target":     r.Target.String(),
		"final":      r.Final.String(),
		"moves":      strings.Join(r.Moves, ","),
		"settled_at": r.SettledAt.UTC().Format(time.RFC3339),
	})
}
