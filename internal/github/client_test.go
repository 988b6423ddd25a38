package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hovercard/internal/tooltip"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-token", srv.URL)
	require.NoError(t, err)
	return c
}

func TestPullRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req graphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acme", req.Variables["owner"])
		assert.Equal(t, "widgets", req.Variables["repo"])
		assert.EqualValues(t, 42, req.Variables["number"])
		assert.Contains(t, req.Query, "assignees(first: 100)")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"organization":{"login":"acme","repository":{"name":"widgets","pullRequest":{
			"title":"Fix bug","state":"OPEN","author":{"login":"octocat"},"baseRef":{"name":"main"},
			"reviewRequests":{"nodes":[]},"assignees":{"nodes":[{"login":"a1"}]},"labels":{"nodes":[]},
			"commits":{"nodes":[{"commit":{"status":null}}]}}}}}}`))
	})

	data, err := c.PullRequest(context.Background(), tooltip.PullRequestRef{Owner: "acme", Repo: "widgets", Number: 42})
	require.NoError(t, err)
	pr := data.Organization.Repository.PullRequest
	assert.Equal(t, "Fix bug", pr.Title)
	assert.Equal(t, "a1", pr.Assignees.Nodes[0].Login)
	assert.Empty(t, pr.StatusContexts())
}

func TestPullRequestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := c.PullRequest(context.Background(), tooltip.PullRequestRef{Owner: "acme", Repo: "widgets", Number: 1})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPullRequestNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":null,"errors":[{"message":"Could not resolve to a Repository"}]}`))
	})

	_, err := c.PullRequest(context.Background(), tooltip.PullRequestRef{Owner: "acme", Repo: "nope", Number: 1})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPullRequestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"organization":{"login":"acme","repository":{"name":"widgets","pullRequest":null}}},` +
			`"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a PullRequest with the number of 999."}]}`))
	})

	data, err := c.PullRequest(context.Background(), tooltip.PullRequestRef{Owner: "acme", Repo: "widgets", Number: 999})
	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, data)
}

func TestPullRequestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.PullRequest(context.Background(), tooltip.PullRequestRef{Owner: "acme", Repo: "widgets", Number: 1})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestOAuthConfig(t *testing.T) {
	cfg := OAuthConfig("id", "secret", "http://localhost/cb", "", "")
	assert.Equal(t, "https://github.com/login/oauth/authorize", cfg.Endpoint.AuthURL)
	assert.Equal(t, Scopes, cfg.Scopes)

	cfg = OAuthConfig("id", "secret", "http://localhost/cb", "http://fake/authorize", "http://fake/token")
	assert.Equal(t, "http://fake/authorize", cfg.Endpoint.AuthURL)
	assert.Equal(t, "http://fake/token", cfg.Endpoint.TokenURL)
	assert.Contains(t, cfg.AuthCodeURL("st"), "state=st")
}
