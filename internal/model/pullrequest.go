package model

import "strings"

// PullRequestData mirrors the GraphQL document served by the tooltip endpoint.
// Lists keep the order the endpoint returned them in.
type PullRequestData struct {
	Organization Organization `json:"organization"`
}

// PullRequest returns the pull request, or nil if the lookup found none.
func (d *PullRequestData) PullRequest() *PullRequest {
	if d == nil {
		return nil
	}
	return d.Organization.Repository.PullRequest
}

type Organization struct {
	Login      string     `json:"login"`
	Repository Repository `json:"repository"`
}

type Repository struct {
	Name        string       `json:"name"`
	PullRequest *PullRequest `json:"pullRequest"` // nil when the number is unknown or hidden
}

type PullRequest struct {
	Title          string                  `json:"title"`
	State          string                  `json:"state"` // "OPEN", "CLOSED", "MERGED"
	Author         Actor                   `json:"author"`
	BaseRef        Ref                     `json:"baseRef"`
	ReviewRequests ReviewRequestConnection `json:"reviewRequests"`
	Assignees      ActorConnection         `json:"assignees"`
	Labels         LabelConnection         `json:"labels"`
	Commits        CommitConnection        `json:"commits"`
}

// Actor is a GitHub user as far as the tooltip cares.
type Actor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Ref struct {
	Name string `json:"name"`
}

type ReviewRequestConnection struct {
	Nodes []ReviewRequest `json:"nodes"`
}

type ReviewRequest struct {
	RequestedReviewer Actor `json:"requestedReviewer"`
}

type ActorConnection struct {
	Nodes []Actor `json:"nodes"`
}

type LabelConnection struct {
	Nodes []Label `json:"nodes"`
}

// Label colour is six hex digits without a leading '#'.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CommitConnection struct {
	Nodes []CommitNode `json:"nodes"`
}

type CommitNode struct {
	Commit Commit `json:"commit"`
}

type Commit struct {
	Status *CommitStatus `json:"status"` // nil when no checks ever reported
}

type CommitStatus struct {
	Contexts []StatusContext `json:"contexts"`
}

// CheckState is the state of a single status context.
type CheckState string

const (
	CheckExpected CheckState = "EXPECTED"
	CheckError    CheckState = "ERROR"
	CheckFailure  CheckState = "FAILURE"
	CheckPending  CheckState = "PENDING"
	CheckSuccess  CheckState = "SUCCESS"
)

type StatusContext struct {
	Context string     `json:"context"`
	State   CheckState `json:"state"`
}

// StateLabel returns the pull request state lowercased: "open", "closed", "merged".
func (pr PullRequest) StateLabel() string {
	return strings.ToLower(pr.State)
}

// StatusContexts returns the status contexts of the first commit only.
func (pr PullRequest) StatusContexts() []StatusContext {
	if len(pr.Commits.Nodes) == 0 {
		return nil
	}
	st := pr.Commits.Nodes[0].Commit.Status
	if st == nil {
		return nil
	}
	return st.Contexts
}
