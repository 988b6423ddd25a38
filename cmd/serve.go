package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hovercard/internal/server"
	"hovercard/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tooltip server",
	Long: `Runs the HTTP server the viewer fetches tooltips from. Users sign in
with GitHub once; their access token is kept in the server's database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

		st, err := store.Open(cfg.Server.Database)
		if err != nil {
			return err
		}
		defer st.Close()

		if cfg.GitHub.ClientID == "" {
			slog.Warn("github oauth app not configured; users cannot sign in")
		}

		srv := server.New(server.Config{
			Listen:       cfg.Server.Listen,
			BaseURL:      cfg.Server.BaseURL,
			Host:         cfg.GitHub.Host,
			APIURL:       cfg.GitHub.APIURL,
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			AuthURL:      cfg.GitHub.AuthURL,
			TokenURL:     cfg.GitHub.TokenURL,
		}, st)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
