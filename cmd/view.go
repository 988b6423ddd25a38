package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"hovercard/internal/document"
	"hovercard/internal/forge"
	"hovercard/internal/hover"
	"hovercard/internal/tooltip"
	"hovercard/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Show a document and hover its pull request links",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateViewer(); err != nil {
		return err
	}

	// the terminal belongs to the UI; logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if cfg.Viewer.LogFile != "" {
		f, err := os.OpenFile(cfg.Viewer.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	doc := document.Parse(src)

	client, err := forge.NewClient(cfg.Viewer.Endpoint, cfg.Viewer.User)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctrl := hover.New(ctx, tooltip.NewLinkMatcher(cfg.GitHub.Host), cfg.Viewer.OverlayOffset)

	slog.Info("viewer started", "file", args[0], "anchors", len(doc.Anchors), "endpoint", cfg.Viewer.Endpoint)
	m := tui.New(tui.Title(filepath.Base(args[0]), len(doc.Lines)), doc, ctrl, client)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}
