// Package hover runs the tooltip lifecycle: one shared overlay, one live
// hover session at a time, and fetch results tagged with the session that
// asked for them.
package hover

import (
	"context"

	"hovercard/internal/model"
	"hovercard/internal/tooltip"
)

// Token identifies a hover session. Tokens are never reused.
type Token uint64

// Overlay is the single screen element that shows tooltip content.
type Overlay struct {
	Visible  bool
	Position tooltip.Point
	View     tooltip.View
}

// Session is handed to whoever performs the fetch for a new hover session.
// Ctx is cancelled when the session ends.
type Session struct {
	Token  Token
	Target model.LinkTarget
	Ctx    context.Context
}

// Controller is not safe for concurrent use; drive it from one event loop.
type Controller struct {
	matcher *tooltip.LinkMatcher
	offset  int
	base    context.Context

	overlay Overlay
	active  bool
	target  model.LinkTarget
	state   model.FetchState
	token   Token
	cancel  context.CancelFunc
}

// New returns a hidden controller. Session contexts derive from ctx.
func New(ctx context.Context, matcher *tooltip.LinkMatcher, offset int) *Controller {
	if matcher == nil {
		matcher = tooltip.NewLinkMatcher(tooltip.DefaultHost)
	}
	return &Controller{matcher: matcher, offset: offset, base: ctx}
}

// Overlay returns the controller's overlay. Callers must treat it as read-only.
func (c *Controller) Overlay() *Overlay { return &c.overlay }

// Active returns the current session's target.
func (c *Controller) Active() (model.LinkTarget, bool) { return c.target, c.active }

func (c *Controller) State() model.FetchState { return c.state }

// PointerOver handles the pointer entering an anchor. A qualifying anchor
// other than the current one ends the current session and starts a new one,
// returned with ok set; the caller must start the fetch for it. A
// non-qualifying anchor hides the overlay.
func (c *Controller) PointerOver(target model.LinkTarget) (s Session, ok bool) {
	if !c.matcher.Matches(target.URL) {
		c.PointerOut()
		return Session{}, false
	}
	if c.active && c.target == target {
		return Session{}, false
	}
	c.PointerOut()

	state, _ := model.FetchState{}.Begin() // idle always begins
	ctx, cancel := context.WithCancel(c.base)

	c.token++
	c.active = true
	c.target = target
	c.state = state
	c.cancel = cancel
	c.overlay = Overlay{
		Visible:  true,
		Position: tooltip.Position(target.Rect, c.offset),
		View:     tooltip.Select(state),
	}
	return Session{Token: c.token, Target: target, Ctx: ctx}, true
}

// PointerOut ends the current session: the overlay is hidden, its content
// unmounted and the session's fetch cancelled.
func (c *Controller) PointerOut() {
	if !c.active {
		return
	}
	c.cancel()
	c.cancel = nil
	c.active = false
	c.target = model.LinkTarget{}
	c.state = model.FetchState{}
	c.token++
	c.overlay = Overlay{}
}

// Resolve applies a fetch outcome if tok still names the live session and
// reports whether it did. Results for ended sessions are dropped.
func (c *Controller) Resolve(tok Token, p model.TooltipPayload, err error) bool {
	if !c.active || tok != c.token {
		return false
	}
	next, terr := c.state.Resolve(p, err)
	if terr != nil {
		return false
	}
	c.state = next
	c.overlay.View = tooltip.Select(next)
	return true
}
