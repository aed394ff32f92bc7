package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileConfig represents the top-level configuration file structure.
// Stored at ~/.config/ragcat/config.yaml
type ProfileConfig struct {
	CurrentProfile string             `yaml:"current-profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile represents a named configuration profile: one deployment's
// transport token, log index and document store connection settings,
// and a shared LLM backend base URL. Operators switch deployments
// (staging vs production Ollama hosts, a second bot token) by naming
// a different profile rather than editing env vars.
type Profile struct {
	Transport     TransportProfile     `yaml:"transport,omitempty"`
	LogIndex      LogIndexProfile      `yaml:"log_index,omitempty"`
	DocumentStore DocumentStoreProfile `yaml:"document_store,omitempty"`
	LLMBaseURL    string               `yaml:"llm_base_url,omitempty"` // Supports ${ENV_VAR} syntax
}

// TransportProfile holds chat transport credentials for a profile.
type TransportProfile struct {
	TelegramToken string `yaml:"telegram-token,omitempty"` // Supports ${ENV_VAR} syntax
}

// LogIndexProfile holds log index connection settings for a profile.
type LogIndexProfile struct {
	URL    string `yaml:"url,omitempty"`
	APIKey string `yaml:"api-key,omitempty"` // Supports ${ENV_VAR} syntax
}

// DocumentStoreProfile holds document store connection settings for a profile.
type DocumentStoreProfile struct {
	URI string `yaml:"uri,omitempty"` // Supports ${ENV_VAR} syntax
}

// Default configuration directory and file names.
const (
	ConfigDirName  = "ragcat"
	ConfigFileName = "config.yaml"
)

// GetConfigDir returns the path to the ragcat config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/ragcat
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadProfiles loads the profile configuration from disk.
// Returns an empty ProfileConfig if the file doesn't exist.
// Warns to stderr if file permissions are insecure.
func LoadProfiles() (*ProfileConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProfileConfig{Profiles: make(map[string]Profile)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	checkFilePermissions(path)

	var cfg ProfileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}

	return &cfg, nil
}

// SaveProfiles writes the profile configuration to disk.
// Creates the config directory if it doesn't exist.
// Sets file permissions to 0600 for security.
func SaveProfiles(cfg *ProfileConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// GetProfile returns the named profile, or an error if it doesn't exist.
func (c *ProfileConfig) GetProfile(name string) (Profile, error) {
	if c.Profiles == nil {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// SetProfile creates or updates a named profile.
func (c *ProfileConfig) SetProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = profile
}

// DeleteProfile removes a named profile.
// Returns an error if the profile doesn't exist.
func (c *ProfileConfig) DeleteProfile(name string) error {
	if c.Profiles == nil {
		return fmt.Errorf("profile %q not found", name)
	}
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return nil
}

// ListProfiles returns a list of all profile names.
func (c *ProfileConfig) ListProfiles() []string {
	if c.Profiles == nil {
		return nil
	}
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

// GetActiveProfile returns the currently active profile.
// If profileFlag is set, uses that. Otherwise uses current-profile from config.
// Returns nil profile and empty name if no profile is active.
func (c *ProfileConfig) GetActiveProfile(profileFlag string) (*Profile, string) {
	name := profileFlag
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return nil, ""
	}
	p, err := c.GetProfile(name)
	if err != nil {
		return nil, ""
	}
	return &p, name
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// IsEnvRef returns true if the string is an environment variable reference.
func IsEnvRef(s string) bool {
	return envVarPattern.MatchString(s)
}

// expandEnvVar expands a single ${VAR} reference.
// Returns the expanded value and true if successful.
// Returns the original string and false if the env var is not set.
func expandEnvVar(s string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(s)
	if len(matches) != 2 {
		return s, true // not an env var reference, return as-is
	}
	varName := matches[1]
	value, ok := os.LookupEnv(varName)
	return value, ok
}

// secretFields enumerates the profile's credential-bearing fields by
// name, for Resolve/MaskCredentials/HasPlainTextCredentials to walk
// without repeating the same expand-or-fail logic per field.
func (p *Profile) secretFields() []struct {
	name string
	val  *string
} {
	return []struct {
		name string
		val  *string
	}{
		{"transport.telegram-token", &p.Transport.TelegramToken},
		{"log_index.api-key", &p.LogIndex.APIKey},
		{"document_store.uri", &p.DocumentStore.URI},
		{"llm_base_url", &p.LLMBaseURL},
	}
}

// Resolve returns a copy of the profile with all ${ENV_VAR} references expanded.
// Returns an error if any referenced environment variable is undefined.
func (p Profile) Resolve() (Profile, error) {
	resolved := p
	for _, f := range resolved.secretFields() {
		if *f.val == "" || !IsEnvRef(*f.val) {
			continue
		}
		val, ok := expandEnvVar(*f.val)
		if !ok {
			return Profile{}, fmt.Errorf("undefined environment variable in %s: %s", f.name, *f.val)
		}
		*f.val = val
	}
	return resolved, nil
}

// HasCredentials returns true if the profile contains any authentication credentials.
func (p Profile) HasCredentials() bool {
	for _, f := range p.secretFields() {
		if *f.val != "" {
			return true
		}
	}
	return false
}

// HasPlainTextCredentials returns true if the profile contains credentials
// that are not environment variable references.
func (p Profile) HasPlainTextCredentials() bool {
	for _, f := range p.secretFields() {
		if *f.val != "" && !IsEnvRef(*f.val) {
			return true
		}
	}
	return false
}

// checkFilePermissions warns to stderr if the config file has insecure permissions.
func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	mode := info.Mode().Perm()
	if mode&0077 != 0 { // group or world can read
		fmt.Fprintf(os.Stderr, "Warning: %s has permissions %04o, should be 0600 for security\n", path, mode)
	}
}

// MaskCredentials returns a copy of the profile with credentials masked for display.
// Environment variable references are shown as-is, plain text values are replaced with "****".
func (p Profile) MaskCredentials() Profile {
	masked := p
	for _, f := range masked.secretFields() {
		if *f.val == "" || IsEnvRef(*f.val) {
			continue
		}
		*f.val = "****"
	}
	return masked
}

// MaskAllCredentials returns a copy of the config with all profile credentials masked.
func (c ProfileConfig) MaskAllCredentials() ProfileConfig {
	masked := ProfileConfig{
		CurrentProfile: c.CurrentProfile,
		Profiles:       make(map[string]Profile),
	}
	for name, profile := range c.Profiles {
		masked.Profiles[name] = profile.MaskCredentials()
	}
	return masked
}

// String returns a YAML representation of the config with credentials masked.
func (c ProfileConfig) String() string {
	masked := c.MaskAllCredentials()
	data, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return strings.TrimSpace(string(data))
}

// PlainTextCredentialWarning returns a warning message if any profiles contain
// plain text credentials.
func PlainTextCredentialWarning() string {
	return "Warning: Storing credentials in plain text. Consider using environment\n" +
		"variable references (e.g., telegram-token: ${RAGCAT_BOT_TOKEN}) for better security."
}
