package tooltip

import (
	"errors"
	"fmt"

	"hovercard/internal/model"
)

var ErrUnrecognizedPayload = errors.New("unrecognized tooltip payload")

// ViewKind tags the view variants an overlay can show.
type ViewKind int

const (
	ViewLoading ViewKind = iota
	ViewAuthenticationRequired
	ViewPullRequest
	ViewError
)

func (k ViewKind) String() string {
	switch k {
	case ViewLoading:
		return "loading"
	case ViewAuthenticationRequired:
		return "authentication-required"
	case ViewPullRequest:
		return "pull-request"
	case ViewError:
		return "error"
	default:
		return fmt.Sprintf("ViewKind(%d)", int(k))
	}
}

// View is a view descriptor. PullRequest is set for ViewPullRequest only.
// Err records why an error view was chosen; it is never shown to the user.
type View struct {
	Kind        ViewKind
	PullRequest *model.PullRequestData
	Err         error
}

// Select chooses the view for a fetch state. An idle state has not started
// fetching yet and shows as loading.
func Select(state model.FetchState) View {
	switch state.Status {
	case model.FetchIdle, model.FetchLoading:
		return View{Kind: ViewLoading}
	case model.FetchFailed:
		return View{Kind: ViewError, Err: state.Err}
	}

	p := state.Payload
	switch p.Type {
	case model.PayloadAuthenticationRequired:
		return View{Kind: ViewAuthenticationRequired}
	case model.PayloadPullRequest:
		if p.Data.PullRequest() != nil {
			return View{Kind: ViewPullRequest, PullRequest: p.Data}
		}
		return View{Kind: ViewError, Err: fmt.Errorf("%w: pull request without data", ErrUnrecognizedPayload)}
	}
	return View{Kind: ViewError, Err: fmt.Errorf("%w: type %q", ErrUnrecognizedPayload, p.Type)}
}
