package tooltip

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hovercard/internal/model"
)

// Overlay widths in cells.
const (
	PullRequestWidth = 64
	AuthWidth        = 50
)

// — styles ——————————————————————————————————————————————————————————————————

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true)
	headStyle   = lipgloss.NewStyle().Bold(true).Faint(true)
	userStyle   = lipgloss.NewStyle().Bold(true)
	refStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	chipStyle   = lipgloss.NewStyle().Padding(0, 1)
	badgeStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#fff"))
	columnStyle = lipgloss.NewStyle().PaddingRight(1)

	stateColors = map[string]lipgloss.Color{
		"open":   lipgloss.Color("#2cbe4e"),
		"closed": lipgloss.Color("#cb2431"),
		"merged": lipgloss.Color("#6f42c1"),
	}
)

// Render draws a view inside the overlay box. It only fails for a pull
// request whose data breaks the endpoint contract (a malformed label colour).
func Render(v View) (string, error) {
	var body string
	switch v.Kind {
	case ViewLoading:
		body = "Loading..."
	case ViewAuthenticationRequired:
		body = lipgloss.NewStyle().Width(AuthWidth).Render(
			"Enhanced tooltips can be displayed if you authenticate with GitHub. Press a to get started.")
	case ViewPullRequest:
		s, err := renderPullRequest(v.PullRequest)
		if err != nil {
			return "", err
		}
		body = s
	default:
		body = RenderError()
	}
	return boxStyle.Render(body), nil
}

// RenderError is the body of the error view. It says nothing about the cause.
func RenderError() string {
	return redStyle.Render("Something went wrong loading this tooltip.")
}

// RenderFallback renders a view, falling back to the error view when the
// view itself cannot be drawn. The render error is returned for logging.
func RenderFallback(v View) (string, error) {
	s, err := Render(v)
	if err != nil {
		return boxStyle.Render(RenderError()), err
	}
	return s, nil
}

func renderPullRequest(data *model.PullRequestData) (string, error) {
	org := data.Organization
	repo := org.Repository
	pr := repo.PullRequest

	var cols [][]string
	cols = append(cols, column("Review Requests", reviewers(pr)))
	if len(pr.Assignees.Nodes) > 0 {
		cols = append(cols, column("Assignees", users(pr.Assignees.Nodes)))
	}
	labels, err := labelChips(pr.Labels.Nodes)
	if err != nil {
		return "", err
	}
	cols = append(cols, column("Labels", labels))
	cols = append(cols, column("Status Checks", statusChecks(pr.StatusContexts())))

	colWidth := PullRequestWidth / len(cols)
	blocks := make([]string, len(cols))
	for i, c := range cols {
		blocks[i] = columnStyle.Width(colWidth).Render(strings.Join(c, "\n"))
	}

	state := pr.StateLabel()
	badge := badgeStyle
	if c, ok := stateColors[state]; ok {
		badge = badge.Background(c)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Width(PullRequestWidth).Render(pr.Title) + "\n")
	b.WriteString(badge.Render(state) + " ")
	b.WriteString(userStyle.Render(pr.Author.Login))
	b.WriteString(" wants to merge into ")
	b.WriteString(refStyle.Render(org.Login+"/"+repo.Name+":"+pr.BaseRef.Name) + "\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	return b.String(), nil
}

func column(head string, items []string) []string {
	return append([]string{headStyle.Render(head)}, items...)
}

func reviewers(pr *model.PullRequest) []string {
	out := make([]string, 0, len(pr.ReviewRequests.Nodes))
	for _, n := range pr.ReviewRequests.Nodes {
		out = append(out, userStyle.Render(n.RequestedReviewer.Login))
	}
	return out
}

func users(nodes []model.Actor) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, userStyle.Render(n.Login))
	}
	return out
}

func labelChips(nodes []model.Label) ([]string, error) {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		fg, err := TextColorFor(n.Color)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", n.Name, err)
		}
		chip := chipStyle.
			Background(lipgloss.Color("#" + n.Color)).
			Foreground(lipgloss.Color(fg))
		out = append(out, chip.Render(n.Name))
	}
	return out, nil
}

func statusChecks(contexts []model.StatusContext) []string {
	out := make([]string, 0, len(contexts))
	for _, c := range contexts {
		if icon := checkIcon(c.State); icon != "" {
			out = append(out, icon+" "+c.Context)
		} else {
			out = append(out, c.Context)
		}
	}
	return out
}

// checkIcon maps a status context state to its icon. Expected, error and any
// unknown state get none.
func checkIcon(s model.CheckState) string {
	switch s {
	case model.CheckFailure:
		return redStyle.Render("✗")
	case model.CheckPending:
		return dimStyle.Render("●")
	case model.CheckSuccess:
		return greenStyle.Render("✓")
	default:
		return ""
	}
}
