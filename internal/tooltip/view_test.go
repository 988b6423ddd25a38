package tooltip

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hovercard/internal/model"
)

func samplePullRequest() *model.PullRequestData {
	return &model.PullRequestData{
		Organization: model.Organization{
			Login: "acme",
			Repository: model.Repository{
				Name: "widgets",
				PullRequest: &model.PullRequest{
					Title:   "Fix bug",
					State:   "OPEN",
					Author:  model.Actor{Login: "octocat"},
					BaseRef: model.Ref{Name: "main"},
					ReviewRequests: model.ReviewRequestConnection{Nodes: []model.ReviewRequest{
						{RequestedReviewer: model.Actor{Login: "reviewer1"}},
					}},
					Labels: model.LabelConnection{Nodes: []model.Label{
						{Name: "bug", Color: "d73a4a"},
					}},
					Commits: model.CommitConnection{Nodes: []model.CommitNode{
						{Commit: model.Commit{Status: &model.CommitStatus{Contexts: []model.StatusContext{
							{Context: "ci/build", State: model.CheckSuccess},
							{Context: "ci/lint", State: model.CheckFailure},
							{Context: "ci/deploy", State: model.CheckPending},
							{Context: "ci/expected", State: model.CheckExpected},
							{Context: "ci/weird", State: "SOMETHING"},
						}}}},
						{Commit: model.Commit{Status: &model.CommitStatus{Contexts: []model.StatusContext{
							{Context: "ci/second-commit", State: model.CheckSuccess},
						}}}},
					}},
				},
			},
		},
	}
}

func loaded(p model.TooltipPayload) model.FetchState {
	return model.FetchState{Status: model.FetchLoaded, Payload: p}
}

func TestSelect(t *testing.T) {
	data := samplePullRequest()
	fetchErr := errors.New("boom")

	tests := []struct {
		name  string
		state model.FetchState
		want  ViewKind
	}{
		{"idle", model.FetchState{}, ViewLoading},
		{"loading", model.FetchState{Status: model.FetchLoading}, ViewLoading},
		{"failed", model.FetchState{Status: model.FetchFailed, Err: fetchErr}, ViewError},
		{"auth required", loaded(model.TooltipPayload{Type: model.PayloadAuthenticationRequired}), ViewAuthenticationRequired},
		{"pull request", loaded(model.TooltipPayload{Type: model.PayloadPullRequest, Data: data}), ViewPullRequest},
		{"pull request without data", loaded(model.TooltipPayload{Type: model.PayloadPullRequest}), ViewError},
		{"pull request not found", loaded(model.TooltipPayload{Type: model.PayloadPullRequest, Data: &model.PullRequestData{
			Organization: model.Organization{Login: "acme", Repository: model.Repository{Name: "widgets"}},
		}}), ViewError},
		{"unknown type", loaded(model.TooltipPayload{Type: "Issue"}), ViewError},
		{"absent type", loaded(model.TooltipPayload{}), ViewError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.state).Kind)
		})
	}
}

func TestSelectErrorReasons(t *testing.T) {
	v := Select(loaded(model.TooltipPayload{Type: "Issue"}))
	assert.ErrorIs(t, v.Err, ErrUnrecognizedPayload)

	fetchErr := errors.New("boom")
	v = Select(model.FetchState{Status: model.FetchFailed, Err: fetchErr})
	assert.ErrorIs(t, v.Err, fetchErr)

	v = Select(loaded(model.TooltipPayload{Type: model.PayloadPullRequest, Data: samplePullRequest()}))
	assert.NoError(t, v.Err)
	assert.NotNil(t, v.PullRequest)
}

func TestRenderPullRequest(t *testing.T) {
	out, err := Render(View{Kind: ViewPullRequest, PullRequest: samplePullRequest()})
	require.NoError(t, err)

	assert.Contains(t, out, "Fix bug")
	assert.Contains(t, out, "open")
	assert.NotContains(t, out, "OPEN")
	assert.Contains(t, out, "octocat")
	assert.Contains(t, out, "acme/widgets:main")
	assert.Contains(t, out, "reviewer1")
	assert.Contains(t, out, "bug")
	assert.Contains(t, out, "✓ ci/build")
	assert.Contains(t, out, "✗ ci/lint")
	assert.Contains(t, out, "● ci/deploy")
	assert.Contains(t, out, "ci/expected")
	assert.Contains(t, out, "ci/weird")
	assert.NotContains(t, out, "ci/second-commit")
	assert.NotContains(t, out, "Assignees")
}

func TestRenderPullRequestAssignees(t *testing.T) {
	data := samplePullRequest()
	data.Organization.Repository.PullRequest.Assignees.Nodes = []model.Actor{{Login: "assignee1"}}

	out, err := Render(View{Kind: ViewPullRequest, PullRequest: data})
	require.NoError(t, err)
	assert.Contains(t, out, "Assignees")
	assert.Contains(t, out, "assignee1")
}

func TestRenderPullRequestWithoutCommits(t *testing.T) {
	data := samplePullRequest()
	data.Organization.Repository.PullRequest.Commits.Nodes = nil

	out, err := Render(View{Kind: ViewPullRequest, PullRequest: data})
	require.NoError(t, err)
	assert.Contains(t, out, "Status Checks")
}

func TestLabelChipColors(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	tests := []struct {
		color  string
		wantFg string
		wantBg string
	}{
		{"fbca04", "38;2;0;0;0", "48;2;251;202;4"},
		{"0000ff", "38;2;255;255;255", "48;2;0;0;255"},
		{"a2eeef", "38;2;0;0;0", "48;2;162;238;239"},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			chips, err := labelChips([]model.Label{{Name: "chip", Color: tt.color}})
			require.NoError(t, err)
			require.Len(t, chips, 1)
			assert.Contains(t, chips[0], tt.wantFg)
			assert.Contains(t, chips[0], tt.wantBg)
			assert.Contains(t, chips[0], "chip")
		})
	}
}

func TestRenderBadLabelColor(t *testing.T) {
	data := samplePullRequest()
	data.Organization.Repository.PullRequest.Labels.Nodes = []model.Label{{Name: "broken", Color: "nope"}}

	_, err := Render(View{Kind: ViewPullRequest, PullRequest: data})
	require.ErrorIs(t, err, ErrColorParse)

	out, err := RenderFallback(View{Kind: ViewPullRequest, PullRequest: data})
	assert.ErrorIs(t, err, ErrColorParse)
	assert.Contains(t, out, "Something went wrong")
	assert.NotContains(t, out, "broken")
}

func TestRenderVariants(t *testing.T) {
	tests := []struct {
		kind ViewKind
		want string
	}{
		{ViewLoading, "Loading..."},
		{ViewAuthenticationRequired, "authenticate with GitHub"},
		{ViewError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			out, err := Render(View{Kind: tt.kind, Err: errors.New("hidden detail")})
			require.NoError(t, err)
			// lipgloss may wrap long sentences; compare without line breaks.
			flat := strings.Join(strings.Fields(stripBorders(out)), " ")
			assert.Contains(t, flat, tt.want)
			assert.NotContains(t, flat, "hidden detail")
		})
	}
}

func stripBorders(s string) string {
	return strings.NewReplacer("│", " ", "╭", " ", "╮", " ", "╰", " ", "╯", " ", "─", " ").Replace(s)
}
