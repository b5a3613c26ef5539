package msgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenCacheRoundTrip(t *testing.T) {
	a := Authenticator{DataDir: t.TempDir(), TenantID: "common", ClientID: "client"}

	tok, err := a.loadToken()
	if err != nil || tok != nil {
		t.Fatalf("empty cache: tok=%v err=%v", tok, err)
	}

	want := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	if err := a.saveToken(want); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(a.DataDir, "auth", "msgraph_tokens.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %v, want 0600", perm)
	}

	got, err := a.loadToken()
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
}

func TestTokenUsesValidCache(t *testing.T) {
	a := Authenticator{DataDir: t.TempDir(), TenantID: "common", ClientID: "client"}
	cached := &oauth2.Token{AccessToken: "cached", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	if err := a.saveToken(cached); err != nil {
		t.Fatal(err)
	}
	got, err := a.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "cached" {
		t.Errorf("AccessToken = %q, want cached", got.AccessToken)
	}
}

func TestCorruptTokenCache(t *testing.T) {
	a := Authenticator{DataDir: t.TempDir()}
	path := a.tokenFilePath()
	os.MkdirAll(filepath.Dir(path), 0o700)
	os.WriteFile(path, []byte("{not json"), 0o600)
	if _, err := a.loadToken(); err == nil {
		t.Error("expected error for corrupt token file")
	}
}

func TestOAuthConfigScopes(t *testing.T) {
	cfg := Authenticator{TenantID: "contoso", ClientID: "id"}.oauth2Config()
	if cfg.Endpoint.TokenURL != "https://login.microsoftonline.com/contoso/oauth2/v2.0/token" {
		t.Errorf("TokenURL = %s", cfg.Endpoint.TokenURL)
	}
	if cfg.Scopes[0] != "https://graph.microsoft.com/Calendars.ReadWrite" {
		t.Errorf("scopes = %v", cfg.Scopes)
	}
}
