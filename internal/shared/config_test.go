package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Archive.Dir != "archive" {
			t.Errorf("expected archive dir archive, got %s", config.Archive.Dir)
		}

		if config.Archive.FuzzyThreshold != 80 {
			t.Errorf("expected fuzzy threshold 80, got %d", config.Archive.FuzzyThreshold)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Spotify.RequestsPerSecond != 10 {
			t.Errorf("expected 10 requests per second, got %v", config.Spotify.RequestsPerSecond)
		}

		if config.Credentials.Spotify.HasClient() {
			t.Errorf("default config should carry no client credentials, got %q", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.Token() != nil {
			t.Error("default config should carry no token")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Archive.Dir != DefaultConfig().Archive.Dir {
			t.Errorf("created config archive dir doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[archive]
dir = "/custom/archive"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Archive.Dir != "/custom/archive" {
			t.Errorf("expected archive dir /custom/archive, got %s", config.Archive.Dir)
		}

		if config.Archive.FuzzyThreshold != 80 {
			t.Errorf("missing keys should keep defaults, got threshold %d", config.Archive.FuzzyThreshold)
		}

		if !config.Credentials.Spotify.HasClient() {
			t.Error("expected client credentials to be present")
		}
	})

	t.Run("LoadConfig invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[archive\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected read error")
		}
	})

	t.Run("SaveConfig round trips tokens", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "sub", "config.toml")
		config := DefaultConfig()
		expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

		if err := config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       expiry,
		}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		token := loaded.Credentials.Spotify.Token()
		if token == nil {
			t.Fatal("expected token after reload")
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
	})

	t.Run("Update keeps refresh token", func(t *testing.T) {
		var sc SpotifyConfig
		_ = sc.Update(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"})
		_ = sc.Update(&oauth2.Token{AccessToken: "a2"})

		if sc.AccessToken != "a2" || sc.RefreshToken != "r1" {
			t.Errorf("unexpected credentials %+v", sc)
		}
		if err := sc.Update(nil); err == nil {
			t.Error("expected error for nil token")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("SPOTIPY_CLIENT_ID", "from_spotipy")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "from_spotify")
		t.Setenv("SPOTIPY_REDIRECT_URI", "")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Credentials.Spotify.ClientID != "from_spotipy" {
			t.Errorf("expected client id from env, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "from_spotify" {
			t.Errorf("expected client secret from env, got %s", config.Credentials.Spotify.ClientSecret)
		}
		if config.Credentials.Spotify.RedirectURI != DefaultConfig().Credentials.Spotify.RedirectURI {
			t.Error("empty env should not override redirect uri")
		}
	})

	t.Run("DatabasePath", func(t *testing.T) {
		config := DefaultConfig()
		config.Database.Path = "/tmp/explicit.db"

		path, err := config.DatabasePath()
		if err != nil || path != "/tmp/explicit.db" {
			t.Errorf("DatabasePath() = %q, %v", path, err)
		}
	})

	t.Run("FindConfig explicit", func(t *testing.T) {
		if got := FindConfig("/etc/archify.toml"); got != "/etc/archify.toml" {
			t.Errorf("FindConfig() = %s", got)
		}
	})
}
