package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileConfig_GetProfile(t *testing.T) {
	cfg := &ProfileConfig{
		Profiles: map[string]Profile{
			"test": {
				LogIndex: LogIndexProfile{URL: "http://test:9200"},
			},
		},
	}

	p, err := cfg.GetProfile("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LogIndex.URL != "http://test:9200" {
		t.Errorf("URL = %q, want %q", p.LogIndex.URL, "http://test:9200")
	}

	_, err = cfg.GetProfile("nonexistent")
	if err == nil {
		t.Error("expected error for non-existent profile")
	}
}

func TestProfileConfig_SetProfile(t *testing.T) {
	cfg := &ProfileConfig{}

	profile := Profile{
		LogIndex:      LogIndexProfile{URL: "http://new:9200"},
		Transport:     TransportProfile{TelegramToken: "new-token"},
		DocumentStore: DocumentStoreProfile{URI: "mongodb://new:27017"},
	}

	cfg.SetProfile("new", profile)

	p, err := cfg.GetProfile("new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LogIndex.URL != "http://new:9200" {
		t.Errorf("LogIndex URL = %q, want %q", p.LogIndex.URL, "http://new:9200")
	}
	if p.Transport.TelegramToken != "new-token" {
		t.Errorf("Transport TelegramToken = %q, want %q", p.Transport.TelegramToken, "new-token")
	}
	if p.DocumentStore.URI != "mongodb://new:27017" {
		t.Errorf("DocumentStore URI = %q, want %q", p.DocumentStore.URI, "mongodb://new:27017")
	}
}

func TestProfileConfig_DeleteProfile(t *testing.T) {
	cfg := &ProfileConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {LogIndex: LogIndexProfile{URL: "http://test:9200"}},
		},
	}

	if err := cfg.DeleteProfile("test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CurrentProfile != "" {
		t.Errorf("CurrentProfile = %q, want empty after deleting the active profile", cfg.CurrentProfile)
	}
	if err := cfg.DeleteProfile("test"); err == nil {
		t.Error("expected error deleting an already-deleted profile")
	}
}

func TestProfileConfig_ListProfiles(t *testing.T) {
	cfg := &ProfileConfig{
		Profiles: map[string]Profile{
			"a": {}, "b": {},
		},
	}
	names := cfg.ListProfiles()
	if len(names) != 2 {
		t.Fatalf("ListProfiles() returned %d names, want 2", len(names))
	}
}

func TestProfileConfig_GetActiveProfile(t *testing.T) {
	cfg := &ProfileConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {LogIndex: LogIndexProfile{URL: "http://default:9200"}},
			"staging": {LogIndex: LogIndexProfile{URL: "http://staging:9200"}},
		},
	}

	p, name := cfg.GetActiveProfile("")
	if name != "default" || p.LogIndex.URL != "http://default:9200" {
		t.Errorf("GetActiveProfile(\"\") = %v, %q, want default profile", p, name)
	}

	p, name = cfg.GetActiveProfile("staging")
	if name != "staging" || p.LogIndex.URL != "http://staging:9200" {
		t.Errorf("GetActiveProfile(\"staging\") = %v, %q, want staging profile", p, name)
	}

	p, name = cfg.GetActiveProfile("missing")
	if p != nil || name != "" {
		t.Errorf("GetActiveProfile(\"missing\") = %v, %q, want nil, \"\"", p, name)
	}
}

func TestIsEnvRef(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"${FOO}", true},
		{"plain-value", false},
		{"", false},
		{"${FOO", false},
	}
	for _, tc := range tests {
		tc := tc
		if got := IsEnvRef(tc.in); got != tc.want {
			t.Errorf("IsEnvRef(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestProfile_Resolve(t *testing.T) {
	t.Setenv("RAGCAT_TEST_TOKEN", "resolved-token")
	p := Profile{Transport: TransportProfile{TelegramToken: "${RAGCAT_TEST_TOKEN}"}}

	resolved, err := p.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Transport.TelegramToken != "resolved-token" {
		t.Errorf("TelegramToken = %q, want %q", resolved.Transport.TelegramToken, "resolved-token")
	}
}

func TestProfile_Resolve_UndefinedEnvVarFails(t *testing.T) {
	p := Profile{Transport: TransportProfile{TelegramToken: "${RAGCAT_DOES_NOT_EXIST}"}}
	if _, err := p.Resolve(); err == nil {
		t.Fatal("expected error for undefined environment variable, got nil")
	}
}

func TestProfile_HasCredentials(t *testing.T) {
	if (Profile{}).HasCredentials() {
		t.Error("empty profile should report no credentials")
	}
	p := Profile{Transport: TransportProfile{TelegramToken: "secret"}}
	if !p.HasCredentials() {
		t.Error("profile with a telegram token should report credentials")
	}
}

func TestProfile_HasPlainTextCredentials(t *testing.T) {
	envRef := Profile{LogIndex: LogIndexProfile{APIKey: "${SOME_VAR}"}}
	if envRef.HasPlainTextCredentials() {
		t.Error("an env var reference should not count as plain text")
	}
	plain := Profile{LogIndex: LogIndexProfile{APIKey: "sk-plain"}}
	if !plain.HasPlainTextCredentials() {
		t.Error("a literal credential should count as plain text")
	}
}

func TestProfile_MaskCredentials(t *testing.T) {
	p := Profile{
		Transport: TransportProfile{TelegramToken: "secret-token"},
		LogIndex:  LogIndexProfile{APIKey: "${ENV_KEY}"},
	}
	masked := p.MaskCredentials()
	if masked.Transport.TelegramToken != "****" {
		t.Errorf("plain text token should be masked, got %q", masked.Transport.TelegramToken)
	}
	if masked.LogIndex.APIKey != "${ENV_KEY}" {
		t.Errorf("env var reference should be shown as-is, got %q", masked.LogIndex.APIKey)
	}
}

func TestGetConfigDir_UsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(dir, ConfigDirName)
	if got != want {
		t.Errorf("GetConfigDir() = %q, want %q", got, want)
	}
}

func TestSaveAndLoadProfiles_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := &ProfileConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {LogIndex: LogIndexProfile{URL: "http://saved:9200"}},
		},
	}
	if err := SaveProfiles(cfg); err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if loaded.CurrentProfile != "default" {
		t.Errorf("CurrentProfile = %q, want default", loaded.CurrentProfile)
	}
	if loaded.Profiles["default"].LogIndex.URL != "http://saved:9200" {
		t.Errorf("loaded LogIndex.URL = %q, want %q", loaded.Profiles["default"].LogIndex.URL, "http://saved:9200")
	}
}
