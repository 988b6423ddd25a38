// Package server implements the tooltip endpoint the viewer fetches from and
// the OAuth flow that lets it query GitHub on a user's behalf.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"hovercard/internal/forge"
	"hovercard/internal/github"
	"hovercard/internal/model"
	"hovercard/internal/tooltip"
)

// Config holds server configuration.
type Config struct {
	Listen       string
	BaseURL      string // public URL of this server, used for the OAuth redirect
	Host         string // code host whose pull request links are served
	APIURL       string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
}

// TokenStore persists OAuth state and access tokens.
type TokenStore interface {
	SaveAuthState(ctx context.Context, state, userID string) error
	ConsumeAuthState(ctx context.Context, state string) (string, bool, error)
	SaveToken(ctx context.Context, userID, token string) error
	Token(ctx context.Context, userID string) (string, bool, error)
	DeleteToken(ctx context.Context, userID string) error
}

// PullRequestSource looks pull requests up with one user's token.
type PullRequestSource interface {
	PullRequest(ctx context.Context, ref tooltip.PullRequestRef) (*model.PullRequestData, error)
}

// SourceFactory builds a PullRequestSource for an access token.
type SourceFactory func(ctx context.Context, token string) (PullRequestSource, error)

type Server struct {
	cfg        Config
	store      TokenStore
	matcher    *tooltip.LinkMatcher
	newSource  SourceFactory
	oauth      *oauth2.Config
	router     chi.Router
	httpServer *http.Server
}

// Option customises a Server.
type Option func(*Server)

// WithSourceFactory replaces the GitHub client used for lookups.
func WithSourceFactory(f SourceFactory) Option {
	return func(s *Server) { s.newSource = f }
}

func New(cfg Config, store TokenStore, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		matcher: tooltip.NewLinkMatcher(cfg.Host),
		oauth: github.OAuthConfig(cfg.ClientID, cfg.ClientSecret,
			strings.TrimSuffix(cfg.BaseURL, "/")+forge.AuthCallbackPath, cfg.AuthURL, cfg.TokenURL),
	}
	s.newSource = func(ctx context.Context, token string) (PullRequestSource, error) {
		return github.NewClient(ctx, token, cfg.APIURL)
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get(forge.TooltipPath, s.serveTooltip)
		r.Get(forge.AuthPath, s.startAuthentication)
	})
	r.Get(forge.AuthCallbackPath, s.completeAuthentication)

	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("tooltip server listening", "addr", s.cfg.Listen, "host", s.matcher.Host())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("tooltip server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// — identity ————————————————————————————————————————————————————————————————

type userKey struct{}

// requireUser rejects requests that carry no viewer identity.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(model.UserHeader)
		if user == "" {
			if c, err := r.Cookie(model.UserCookie); err == nil {
				user = c.Value
			}
		}
		if user == "" {
			http.Error(w, "please log in", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func userFrom(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(string)
	return u
}

// — handlers ————————————————————————————————————————————————————————————————

func (s *Server) serveTooltip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(ctx)

	ref, ok := s.matcher.Parse(r.URL.Query().Get("url"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	token, found, err := s.store.Token(ctx, user)
	if err != nil {
		slog.Error("reading access token", "user", user, "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, model.TooltipPayload{Type: model.PayloadAuthenticationRequired})
		return
	}

	src, err := s.newSource(ctx, token)
	if err != nil {
		slog.Error("creating github client", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	data, err := src.PullRequest(ctx, ref)
	if errors.Is(err, github.ErrUnauthorized) {
		if err := s.store.DeleteToken(ctx, user); err != nil {
			slog.Error("deleting rejected token", "user", user, "error", err)
		}
		writeJSON(w, http.StatusOK, model.TooltipPayload{Type: model.PayloadAuthenticationRequired})
		return
	}
	if err != nil {
		slog.Error("fetching pull request", "owner", ref.Owner, "repo", ref.Repo, "number", ref.Number, "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, model.TooltipPayload{Type: model.PayloadPullRequest, Data: data})
}

func (s *Server) startAuthentication(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		http.Error(w, "This server has not been configured for GitHub sign-in yet. Go poke your administrator.",
			http.StatusServiceUnavailable)
		return
	}

	state := uuid.NewString()
	if err := s.store.SaveAuthState(r.Context(), state, userFrom(r.Context())); err != nil {
		slog.Error("saving auth state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) completeAuthentication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	user, ok, err := s.store.ConsumeAuthState(ctx, state)
	if err != nil {
		slog.Error("reading auth state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Error("oauth exchange", "user", user, "error", err)
		http.Error(w, "oauth request error. please try again", http.StatusInternalServerError)
		return
	}
	if err := s.store.SaveToken(ctx, user, tok.AccessToken); err != nil {
		slog.Error("saving access token", "user", user, "error", err)
		http.Error(w, "error storing access token. please try again", http.StatusInternalServerError)
		return
	}

	slog.Info("user authenticated with github", "user", user)
	fmt.Fprint(w, "Authentication complete. You may now close this page and return to hovercard.")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}
