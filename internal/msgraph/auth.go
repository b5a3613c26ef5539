package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.ReadWrite",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// Authenticator obtains Microsoft Graph tokens through the device code flow
// and caches them under DataDir/auth.
type Authenticator struct {
	DataDir  string
	TenantID string
	ClientID string
	// Out receives the device code sign-in instructions.
	Out    io.Writer
	Logger *slog.Logger
}

func (a Authenticator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a Authenticator) tokenFilePath() string {
	return filepath.Join(a.DataDir, "auth", "msgraph_tokens.json")
}

// oauth2Config returns the oauth2.Config for Microsoft Graph.
func (a Authenticator) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID: a.ClientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(a.TenantID, "devicecode"),
			TokenURL:      msEndpoint(a.TenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken returns the cached token, or nil if none is stored.
func (a Authenticator) loadToken() (*oauth2.Token, error) {
	path := a.tokenFilePath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists tok with a temp file and rename.
func (a Authenticator) saveToken(tok *oauth2.Token) error {
	path := a.tokenFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Token returns a usable token: the cached one if still valid, a refreshed
// one if a refresh token is available, or a new one from the device code flow.
func (a Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	cfg := a.oauth2Config()
	log := a.logger()

	tok, err := a.loadToken()
	if err != nil {
		log.Warn("ignoring cached token", "err", err)
		tok = nil
	}
	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := a.saveToken(refreshed); err != nil {
				log.Warn("could not save refreshed token", "err", err)
			}
			return refreshed, nil
		}
		log.Info("token refresh failed, re-authenticating", "err", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}
	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := a.saveToken(newTok); err != nil {
		log.Warn("could not save token", "err", err)
	}
	return newTok, nil
}

// HTTPClient returns an http.Client that authenticates every request and
// persists refreshed tokens.
func (a Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	ts := a.oauth2Config().TokenSource(ctx, tok)
	return oauth2.NewClient(ctx, &savingTokenSource{ts: ts, auth: a}), nil
}

// savingTokenSource wraps a TokenSource and persists tokens it hands out.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	auth Authenticator
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.auth.saveToken(tok); err != nil {
			s.auth.logger().Debug("could not persist token", "err", err)
		}
	}
	return tok, nil
}
