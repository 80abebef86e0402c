package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

// OAuthConfig holds the Google OAuth client credentials for the mailbox.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	// CallbackAddr is where the interactive flow listens for the redirect.
	// Defaults to :8484.
	CallbackAddr string
}

func (c OAuthConfig) oauth2Config() *oauth2.Config {
	addr := c.CallbackAddr
	if addr == "" {
		addr = ":8484"
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://localhost" + addr + "/callback",
		Scopes:       []string{gmailapi.GmailReadonlyScope},
	}
}

// AuthenticateInteractive runs the browser-based OAuth flow: it starts a
// local callback server, prints the consent URL, waits for the redirect,
// exchanges the code, and saves the resulting token into the store.
func AuthenticateInteractive(ctx context.Context, config OAuthConfig, store *TokenStore) (*oauth2.Token, error) {
	oauthConfig := config.oauth2Config()

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errorChan <- fmt.Errorf("no authorization code received")
			_, _ = fmt.Fprint(w, "<html><body><h1>Authentication Failed</h1><p>No authorization code received. Please try again.</p></body></html>")
			return
		}
		codeChan <- code
		_, _ = fmt.Fprint(w, "<html><body><h1>Authentication Successful</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	addr := config.CallbackAddr
	if addr == "" {
		addr = ":8484"
	}
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errorChan <- fmt.Errorf("starting callback server: %w", err)
		}
	}()

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	slog.Info("Gmail authorization required")
	slog.Info("Visit this URL to authorize access", "url", authURL)

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errorChan:
		_ = server.Shutdown(ctx)
		return nil, err
	case <-time.After(5 * time.Minute):
		_ = server.Shutdown(ctx)
		return nil, fmt.Errorf("authentication timed out after 5 minutes")
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return nil, ctx.Err()
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("error shutting down callback server", "error", err)
	}

	token, err := oauthConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	if err := store.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}
	slog.Info("Gmail token saved")

	return token, nil
}

// storeTokenSource yields tokens from the encrypted store, refreshing and
// re-persisting them when they are within the expiry buffer.
type storeTokenSource struct {
	ctx    context.Context
	config *oauth2.Config
	store  *TokenStore
}

// TokenSource returns an oauth2.TokenSource backed by the encrypted store.
// Callers get a usable access token on every call without managing refresh
// themselves.
func TokenSource(ctx context.Context, config OAuthConfig, store *TokenStore) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &storeTokenSource{
		ctx:    ctx,
		config: config.oauth2Config(),
		store:  store,
	})
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Load(s.ctx)
	if err != nil {
		return nil, err
	}
	if tokenUsable(token) {
		return token, nil
	}

	if token.RefreshToken == "" {
		return nil, fmt.Errorf("gmail token expired and no refresh token stored; re-run authorization")
	}

	slog.Info("refreshing Gmail token")
	refreshed, err := s.config.TokenSource(s.ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	// Google omits the refresh token on refresh responses; keep the old one.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}

	if err := s.store.Save(s.ctx, refreshed); err != nil {
		slog.Warn("failed to persist refreshed token", "error", err)
	}
	return refreshed, nil
}
