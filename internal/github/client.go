package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"hovercard/internal/model"
	"hovercard/internal/tooltip"
)

var (
	// ErrUnauthorized means GitHub rejected the access token.
	ErrUnauthorized = errors.New("github rejected the access token")
	ErrNoData       = errors.New("github returned no data")
)

// Client wraps the GitHub API client for tooltip queries.
type Client struct {
	client *github.Client
}

// NewClient creates a GitHub client authenticated with token. apiURL
// overrides https://api.github.com/ when set.
func NewClient(ctx context.Context, token, apiURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	gh := github.NewClient(oauth2.NewClient(ctx, ts))

	if apiURL != "" {
		u, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
		}
		gh.BaseURL = u
	}
	return &Client{client: gh}, nil
}

// pullRequestQuery asks for everything the pull request tooltip shows. The
// owner is read as a repositoryOwner so user-owned repositories work too.
const pullRequestQuery = `query($owner: String!, $repo: String!, $number: Int!) {
  organization: repositoryOwner(login: $owner) {
    login
    repository(name: $repo) {
      name
      pullRequest(number: $number) {
        author { avatarUrl login }
        baseRef { name }
        commits(last: 1) {
          nodes { commit { status { contexts { context state } } } }
        }
        labels(first: 100) { nodes { color name } }
        reviewRequests(first: 100) {
          nodes { requestedReviewer { ... on User { avatarUrl login } } }
        }
        assignees(first: 100) { nodes { avatarUrl login } }
        state
        title
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   *model.PullRequestData `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// PullRequest fetches tooltip data for ref.
func (c *Client) PullRequest(ctx context.Context, ref tooltip.PullRequestRef) (*model.PullRequestData, error) {
	req, err := c.client.NewRequest(http.MethodPost, "graphql", graphQLRequest{
		Query: pullRequestQuery,
		Variables: map[string]any{
			"owner":  ref.Owner,
			"repo":   ref.Repo,
			"number": ref.Number,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("building graphql request: %w", err)
	}

	var resp graphQLResponse
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		var er *github.ErrorResponse
		if errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("graphql request: %w", err)
	}

	for _, e := range resp.Errors {
		slog.Error("github graphql error", "owner", ref.Owner, "repo", ref.Repo, "number", ref.Number, "message", e.Message)
	}
	if resp.Data.PullRequest() == nil {
		return nil, ErrNoData
	}
	return resp.Data, nil
}
