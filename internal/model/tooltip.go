package model

import (
	"errors"
	"fmt"
)

// PayloadType discriminates tooltip payload variants.
type PayloadType string

const (
	PayloadAuthenticationRequired PayloadType = "AuthenticationRequired"
	PayloadPullRequest            PayloadType = "PullRequest"
)

// TooltipPayload is the body of a tooltip endpoint response. Data is only set
// for PayloadPullRequest. Unknown Type values are kept as-is so the renderer
// can fall back to the error view.
type TooltipPayload struct {
	Type PayloadType      `json:"type"`
	Data *PullRequestData `json:"data,omitempty"`
}

// Identity of the viewer as presented to the tooltip endpoint.
const (
	UserCookie = "hovercard_user"
	UserHeader = "X-Hovercard-User"
)

// Rect is an anchor's bounding box in screen cells.
type Rect struct {
	Top, Left, Right, Bottom int
}

// LinkTarget is the anchor of one hover session.
type LinkTarget struct {
	URL  string
	Rect Rect
}

// — fetch state —————————————————————————————————————————————————————————————

type FetchStatus int

const (
	FetchIdle FetchStatus = iota
	FetchLoading
	FetchLoaded
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchIdle:
		return "idle"
	case FetchLoading:
		return "loading"
	case FetchLoaded:
		return "loaded"
	case FetchFailed:
		return "failed"
	default:
		return fmt.Sprintf("FetchStatus(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid fetch state transition")

// FetchState moves only Idle → Loading → (Loaded | Failed).
type FetchState struct {
	Status  FetchStatus
	Payload TooltipPayload // set when Loaded
	Err     error          // set when Failed
}

// Begin moves an idle state to loading.
func (s FetchState) Begin() (FetchState, error) {
	if s.Status != FetchIdle {
		return s, fmt.Errorf("%w: begin from %s", ErrInvalidTransition, s.Status)
	}
	return FetchState{Status: FetchLoading}, nil
}

// Resolve settles a loading state with the fetch outcome.
func (s FetchState) Resolve(p TooltipPayload, err error) (FetchState, error) {
	if s.Status != FetchLoading {
		return s, fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, s.Status)
	}
	if err != nil {
		return FetchState{Status: FetchFailed, Err: err}, nil
	}
	return FetchState{Status: FetchLoaded, Payload: p}, nil
}
