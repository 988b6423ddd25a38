package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hovercard/internal/document"
	"hovercard/internal/forge"
	"hovercard/internal/hover"
	"hovercard/internal/model"
	"hovercard/internal/tooltip"
)

// — styles ——————————————————————————————————————————————————————————————————

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	dimStyle = lipgloss.NewStyle().Faint(true)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)
)

const (
	headerHeight = 1
	footerHeight = 2
)

// — keys ————————————————————————————————————————————————————————————————————

type keyMap struct {
	Quit key.Binding
	Auth key.Binding
	Up   key.Binding
	Down key.Binding
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Up, k.Down, k.Auth, k.Quit} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Auth: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "authenticate with GitHub")),
	Up:   key.NewBinding(key.WithKeys("up", "k", "pgup"), key.WithHelp("↑/pgup", "scroll up")),
	Down: key.NewBinding(key.WithKeys("down", "j", "pgdown"), key.WithHelp("↓/pgdn", "scroll down")),
}

// — messages ————————————————————————————————————————————————————————————————

type fetchResolvedMsg struct {
	token   hover.Token
	url     string
	payload model.TooltipPayload
	err     error
}

type authURLMsg struct {
	url string
	err error
}

// Client is what the viewer needs from the tooltip endpoint.
type Client interface {
	forge.Fetcher
	AuthURL(ctx context.Context) (string, error)
}

// — model ———————————————————————————————————————————————————————————————————

type Model struct {
	title   string
	doc     document.Document
	vp      viewport.Model
	help    help.Model
	hover   *hover.Controller
	client  Client
	width   int
	height  int
	status  string
	overlay string // rendered overlay content, empty when hidden
}

func New(title string, doc document.Document, ctrl *hover.Controller, client Client) Model {
	vp := viewport.New(0, 0)
	vp.SetContent(doc.Render())
	return Model{
		title:  title,
		doc:    doc,
		vp:     vp,
		help:   help.New(),
		hover:  ctrl,
		client: client,
	}
}

// — commands ————————————————————————————————————————————————————————————————

func fetchCmd(client forge.Fetcher, s hover.Session) tea.Cmd {
	return func() tea.Msg {
		p, err := client.Fetch(s.Ctx, s.Target.URL)
		return fetchResolvedMsg{token: s.Token, url: s.Target.URL, payload: p, err: err}
	}
}

func authCmd(client Client) tea.Cmd {
	return func() tea.Msg {
		u, err := client.AuthURL(context.Background())
		return authURLMsg{url: u, err: err}
	}
}

func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		if err := cmd.Run(); err != nil {
			slog.Warn("open browser", "url", url, "error", err)
		}
		return nil
	}
}

// — tea.Model ———————————————————————————————————————————————————————————————

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-headerHeight-footerHeight, 0)
		m.help.Width = msg.Width
		// anchors moved on screen
		m.hover.PointerOut()
		m.refreshOverlay()
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case fetchResolvedMsg:
		if !m.hover.Resolve(msg.token, msg.payload, msg.err) {
			slog.Debug("dropped stale tooltip result", "url", msg.url)
			return m, nil
		}
		if msg.err != nil {
			slog.Error("tooltip fetch failed", "url", msg.url, "error", msg.err)
		}
		m.refreshOverlay()
		return m, nil

	case authURLMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			slog.Error("start authentication", "error", msg.err)
			return m, nil
		}
		m.status = "Opened GitHub in your browser."
		return m, openURLCmd(msg.url)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Auth):
			m.status = ""
			return m, authCmd(m.client)
		}
	}

	var cmd tea.Cmd
	offset := m.vp.YOffset
	m.vp, cmd = m.vp.Update(msg)
	if m.vp.YOffset != offset {
		m.hover.PointerOut()
		m.refreshOverlay()
	}
	return m, cmd
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionMotion {
		var cmd tea.Cmd
		offset := m.vp.YOffset
		m.vp, cmd = m.vp.Update(msg)
		if m.vp.YOffset != offset {
			m.hover.PointerOut()
			m.refreshOverlay()
		}
		return m, cmd
	}

	target, ok := m.targetAt(msg.X, msg.Y)
	if !ok {
		m.hover.PointerOut()
		m.refreshOverlay()
		return m, nil
	}
	s, started := m.hover.PointerOver(target)
	m.refreshOverlay()
	if !started {
		return m, nil
	}
	return m, fetchCmd(m.client, s)
}

// targetAt hit-tests screen cell (x, y) against the document's anchors.
func (m Model) targetAt(x, y int) (model.LinkTarget, bool) {
	row := y - headerHeight
	if row < 0 || row >= m.vp.Height {
		return model.LinkTarget{}, false
	}
	a, ok := m.doc.AnchorAt(row+m.vp.YOffset, x)
	if !ok {
		return model.LinkTarget{}, false
	}
	return model.LinkTarget{
		URL:  a.URL,
		Rect: model.Rect{Top: y, Left: a.Start, Right: a.End, Bottom: y + 1},
	}, true
}

// refreshOverlay re-renders the overlay content after the controller changed it.
func (m *Model) refreshOverlay() {
	ov := m.hover.Overlay()
	if !ov.Visible {
		m.overlay = ""
		return
	}
	s, err := tooltip.RenderFallback(ov.View)
	if err != nil {
		slog.Error("render tooltip", "view", ov.View.Kind.String(), "error", err)
	}
	if ov.View.Kind == tooltip.ViewError && ov.View.Err != nil {
		slog.Debug("tooltip error view", "reason", ov.View.Err)
	}
	m.overlay = s
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	header := titleStyle.Render(m.title)
	base := lipgloss.JoinVertical(lipgloss.Left, header, m.vp.View(), m.renderHelp())

	ov := m.hover.Overlay()
	if !ov.Visible || m.overlay == "" {
		return base
	}
	at := clampOverlay(ov.Position, lipgloss.Width(m.overlay), lipgloss.Height(m.overlay), m.width, m.height)
	return placeOverlay(at.Left, at.Top, m.overlay, base)
}

// — layout helpers ——————————————————————————————————————————————————————————

func (m Model) renderHelp() string {
	sep := dimStyle.Render(strings.Repeat("─", m.width))
	text := m.help.ShortHelpView(keys.ShortHelp())
	if m.status != "" {
		text = errStyle.Render(m.status)
	}
	return sep + "\n" + helpStyle.Render(text)
}

// Title is shown in the header; the file name by default.
func Title(path string, lines int) string {
	return fmt.Sprintf("%s · %d lines", path, lines)
}
