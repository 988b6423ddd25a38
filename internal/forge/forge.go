package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"hovercard/internal/model"
)

// Endpoint paths served by the tooltip backend.
const (
	TooltipPath      = "/plugins/github-tooltips/tooltip"
	AuthPath         = "/plugins/github-tooltips/auth"
	AuthCallbackPath = "/plugins/github-tooltips/auth-callback"
)

var (
	ErrNetwork = errors.New("tooltip request failed")
	ErrDecode  = errors.New("malformed tooltip response")
)

// Fetcher resolves tooltip metadata for a link.
type Fetcher interface {
	Fetch(ctx context.Context, linkURL string) (model.TooltipPayload, error)
}

// Client talks to the tooltip endpoint with the viewer's credentials attached
// as a cookie on the endpoint's origin.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a client for the endpoint at base acting as user.
// Requests have no timeout: a hover session ends them by cancelling ctx.
func NewClient(base, user string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q: must be an absolute URL", base)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if user != "" {
		jar.SetCookies(u, []*http.Cookie{{Name: model.UserCookie, Value: user, Path: "/"}})
	}

	return &Client{
		base: u,
		http: &http.Client{
			Jar: jar,
			// the auth redirect points at the code host; callers want the Location itself
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Fetch issues exactly one GET for linkURL. Transport failures and non-2xx
// statuses wrap ErrNetwork; undecodable bodies wrap ErrDecode.
func (c *Client) Fetch(ctx context.Context, linkURL string) (model.TooltipPayload, error) {
	endpoint := c.base.JoinPath(TooltipPath)
	endpoint.RawQuery = url.Values{"url": {linkURL}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return model.TooltipPayload{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.TooltipPayload{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.TooltipPayload{}, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TooltipPayload{}, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	return DecodePayload(body)
}

// AuthURL asks the endpoint to start the OAuth flow and returns the code
// host's authorize URL it redirects to.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath(AuthPath).String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusSeeOther {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return "", fmt.Errorf("start auth: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("start auth: redirect without location")
	}
	return loc, nil
}

// wirePayload keeps data raw until the discriminator says how to read it.
type wirePayload struct {
	Type model.PayloadType `json:"type"`
	Data json.RawMessage   `json:"data"`
}

// DecodePayload parses an endpoint body. An unknown type is not an error
// here; the renderer decides what to show for it.
func DecodePayload(body []byte) (model.TooltipPayload, error) {
	var w wirePayload
	if err := json.Unmarshal(body, &w); err != nil {
		return model.TooltipPayload{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	p := model.TooltipPayload{Type: w.Type}
	if w.Type != model.PayloadPullRequest {
		return p, nil
	}
	if len(w.Data) == 0 || string(w.Data) == "null" {
		return model.TooltipPayload{}, fmt.Errorf("%w: pull request without data", ErrDecode)
	}
	var data model.PullRequestData
	if err := json.Unmarshal(w.Data, &data); err != nil {
		return model.TooltipPayload{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if data.PullRequest() == nil {
		return model.TooltipPayload{}, fmt.Errorf("%w: pull request not found", ErrDecode)
	}
	p.Data = &data
	return p, nil
}
