// Package config provides centralized configuration management for
// ragcat. It supports deterministic precedence (flags > env > profile >
// defaults) using Viper, and fail-fast validation to prevent silent
// misconfiguration.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

// Config holds all application configuration.
type Config struct {
	Transport     TransportConfig     `mapstructure:"transport"`
	LLM           LLMConfig           `mapstructure:"llm"`
	LogIndex      LogIndexConfig      `mapstructure:"log_index"`
	DocumentStore DocumentStoreConfig `mapstructure:"document_store"`
	CodeStore     CodeStoreConfig     `mapstructure:"code_store"`
	Diagnostics   DiagnosticsConfig   `mapstructure:"diagnostics"`
	ProfileName   string              `mapstructure:"-"` // Active profile name (not persisted)
}

// TransportConfig selects and configures the chat transport.
type TransportConfig struct {
	Kind          string `mapstructure:"kind"` // "telegram" or "tui"
	TelegramToken string `mapstructure:"telegram_token"`
}

// LLMRoleConfig is the per-role LLM client configuration (spec.md §6).
type LLMRoleConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	NumCtx      int           `mapstructure:"num_ctx"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ToClientConfig builds the llmclient.Config this role's client is
// constructed from.
func (r LLMRoleConfig) ToClientConfig() llmclient.Config {
	return llmclient.Config{
		BaseURL:     r.BaseURL,
		Model:       r.Model,
		Temperature: r.Temperature,
		NumCtx:      r.NumCtx,
		Timeout:     r.Timeout,
	}
}

// LLMConfig groups every LLM role spec.md §6 names. Each role is an
// independent client; roles sharing a backend simply repeat its
// base_url.
type LLMConfig struct {
	Answerer            LLMRoleConfig `mapstructure:"answerer"`
	LogSummarizer       LLMRoleConfig `mapstructure:"log_summarizer"`
	Retriever           LLMRoleConfig `mapstructure:"retriever"`
	RetrievalGrader     LLMRoleConfig `mapstructure:"retrieval_grader"`
	QuestionRewriter    LLMRoleConfig `mapstructure:"question_rewriter"`
	HallucinationGrader LLMRoleConfig `mapstructure:"hallucination_grader"`
	AnswerGrader        LLMRoleConfig `mapstructure:"answer_grader"`
	MongoDBRetriever    LLMRoleConfig `mapstructure:"mongodb_retriever"`
	OpenSearchRetriever LLMRoleConfig `mapstructure:"opensearch_retriever"`
}

// LogIndexConfig holds log index (Elasticsearch) connection settings.
type LogIndexConfig struct {
	URL         string        `mapstructure:"url"`
	Index       string        `mapstructure:"index"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
	QuerySize   int           `mapstructure:"query_size"`
}

// CollectionConfig names one document store collection and its
// searchable fields, per spec.md §6 / §4.4.
type CollectionConfig struct {
	Name             string   `mapstructure:"name"`
	ContentField     string   `mapstructure:"content_field"`
	ExactMatchFields []string `mapstructure:"exact_match_fields"`
	RegexMatchFields []string `mapstructure:"regex_match_fields"`
	MetadataFields   []string `mapstructure:"metadata_fields"`
}

// DocumentStoreConfig holds document store (MongoDB) connection
// settings and the collections it searches.
type DocumentStoreConfig struct {
	URI         string              `mapstructure:"uri"`
	Database    string              `mapstructure:"database"`
	QueryLimit  int64               `mapstructure:"query_limit"`
	UseSSL      bool                `mapstructure:"use_ssl"`
	VerifyCerts bool                `mapstructure:"verify_certs"`
	CACertPath  string              `mapstructure:"ca_cert_path"`
	Collections []CollectionConfig  `mapstructure:"collections"`
}

// CodeStoreConfig holds in-memory code corpus settings, exactly the
// {path, glob, extensions, language, embedding_model, k} group spec.md
// §6 lists.
type CodeStoreConfig struct {
	Path           string   `mapstructure:"path"`
	Glob           string   `mapstructure:"glob"`
	Language       string   `mapstructure:"language"`
	Extensions     []string `mapstructure:"extensions"`
	EmbeddingModel string   `mapstructure:"embedding_model"`
	K              int      `mapstructure:"k"`
}

// DiagnosticsConfig holds logging verbosity settings.
type DiagnosticsConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Default configuration values.
const (
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultTemperature   = 0.0
	DefaultLLMTimeout    = 60 * time.Second
	DefaultESURL         = "http://localhost:9200"
	DefaultLogIndex      = "logs-*"
	DefaultESTimeout     = 30 * time.Second
	DefaultPingTimeout   = 5 * time.Second
	DefaultQuerySize     = 20
	DefaultMongoDatabase = "ragcat"
	DefaultQueryLimit    = 20
	DefaultCodeGlob      = "**/*"
	DefaultCodeK         = 5
	DefaultLogLevel      = "info"
)

// profileFlag holds the --profile flag value, set by the root command.
var profileFlag string

// SetProfileFlag sets the profile flag value (called from root command init).
func SetProfileFlag(name string) {
	profileFlag = name
}

// GetProfileFlag returns the current profile flag value.
func GetProfileFlag() string {
	return profileFlag
}

// ContextKey is used to store Config in a context.Context.
type ContextKey struct{}

// FromContext retrieves Config from context.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ContextKey{}).(Config)
	return cfg, ok
}

// WithContext stores Config in context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ContextKey{}, cfg)
}

// Load builds a Config using Viper with precedence: flags > env > profile > defaults.
// It binds flags from the command (and its parents) and fails fast on invalid values.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RAGCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	profileName, err := applyProfile(v)
	if err != nil {
		return Config{}, fmt.Errorf("apply profile: %w", err)
	}

	if err := bindFlagsRecursive(v, cmd); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ProfileName = profileName

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyProfile loads the profile configuration and applies the active
// profile values to Viper. Returns the name of the active profile
// (empty if none).
func applyProfile(v *viper.Viper) (string, error) {
	profileCfg, err := LoadProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load profiles: %v\n", err)
		return "", nil
	}

	profile, name := profileCfg.GetActiveProfile(profileFlag)
	if profile == nil {
		return "", nil
	}

	resolved, err := profile.Resolve()
	if err != nil {
		return "", fmt.Errorf("profile %q: %w", name, err)
	}

	if resolved.Transport.TelegramToken != "" {
		v.SetDefault("transport.telegram_token", resolved.Transport.TelegramToken)
	}
	if resolved.LogIndex.URL != "" {
		v.SetDefault("log_index.url", resolved.LogIndex.URL)
	}
	if resolved.LogIndex.APIKey != "" {
		v.SetDefault("log_index.api_key", resolved.LogIndex.APIKey)
	}
	if resolved.DocumentStore.URI != "" {
		v.SetDefault("document_store.uri", resolved.DocumentStore.URI)
	}
	if resolved.LLMBaseURL != "" {
		for _, key := range llmRoleKeys {
			v.SetDefault(key+".base_url", resolved.LLMBaseURL)
		}
	}

	return name, nil
}

// llmRoleKeys lists every per-role LLM config group, used both to seed
// defaults and to fan a profile's shared base_url out to every role.
var llmRoleKeys = []string{
	"llm.answerer",
	"llm.log_summarizer",
	"llm.retriever",
	"llm.retrieval_grader",
	"llm.question_rewriter",
	"llm.hallucination_grader",
	"llm.answer_grader",
	"llm.mongodb_retriever",
	"llm.opensearch_retriever",
}

// setDefaults registers default values with Viper.
func setDefaults(v *viper.Viper) {
	for _, key := range llmRoleKeys {
		v.SetDefault(key+".base_url", DefaultOllamaURL)
		v.SetDefault(key+".temperature", DefaultTemperature)
		v.SetDefault(key+".num_ctx", 0)
		v.SetDefault(key+".timeout", DefaultLLMTimeout)
	}
	v.SetDefault("llm.answerer.model", "llama3.1")
	v.SetDefault("llm.log_summarizer.model", "llama3.1")
	v.SetDefault("llm.retriever.model", "llama3.1")
	v.SetDefault("llm.retrieval_grader.model", "llama3.1")
	v.SetDefault("llm.question_rewriter.model", "llama3.1")
	v.SetDefault("llm.hallucination_grader.model", "llama3.1")
	v.SetDefault("llm.answer_grader.model", "llama3.1")
	v.SetDefault("llm.mongodb_retriever.model", "llama3.1")
	v.SetDefault("llm.opensearch_retriever.model", "llama3.1")

	v.SetDefault("transport.kind", "tui")
	v.SetDefault("transport.telegram_token", "")

	v.SetDefault("log_index.url", DefaultESURL)
	v.SetDefault("log_index.index", DefaultLogIndex)
	v.SetDefault("log_index.timeout", DefaultESTimeout)
	v.SetDefault("log_index.ping_timeout", DefaultPingTimeout)
	v.SetDefault("log_index.query_size", DefaultQuerySize)
	v.SetDefault("log_index.api_key", "")

	v.SetDefault("document_store.database", DefaultMongoDatabase)
	v.SetDefault("document_store.query_limit", DefaultQueryLimit)
	v.SetDefault("document_store.use_ssl", false)
	v.SetDefault("document_store.verify_certs", true)

	v.SetDefault("code_store.glob", DefaultCodeGlob)
	v.SetDefault("code_store.k", DefaultCodeK)

	v.SetDefault("diagnostics.debug", false)
	v.SetDefault("diagnostics.log_level", DefaultLogLevel)
}

// bindFlagsRecursive binds flags from cmd and all parents so Viper sees them.
func bindFlagsRecursive(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := bindFlagSet(v, cmd.Flags()); err != nil {
		return err
	}
	if err := bindFlagSet(v, cmd.PersistentFlags()); err != nil {
		return err
	}
	return bindFlagsRecursive(v, cmd.Parent())
}

// flagToKey maps CLI flag names to their nested Viper key.
var flagToKey = map[string]string{
	"telegram-token":  "transport.telegram_token",
	"es-url":          "log_index.url",
	"index":           "log_index.index",
	"ping-timeout":    "log_index.ping_timeout",
	"query-size":      "log_index.query_size",
	"mongo-uri":       "document_store.uri",
	"mongo-database":  "document_store.database",
	"code-path":       "code_store.path",
	"code-glob":       "code_store.glob",
	"debug":           "diagnostics.debug",
	"log-level":       "diagnostics.log_level",
}

// bindFlagSet binds flags to Viper keys using explicit mappings to nested keys.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToKey[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", ".")
		}
		_ = v.BindPFlag(key, f)
	})
	return nil
}

// Validate enforces correctness and fails fast on invalid configuration.
func (c Config) Validate() error {
	switch c.Transport.Kind {
	case "telegram":
		if strings.TrimSpace(c.Transport.TelegramToken) == "" {
			return fmt.Errorf("transport.telegram_token is required when transport.kind is telegram")
		}
	case "tui":
	default:
		return fmt.Errorf("transport.kind must be telegram or tui, got %q", c.Transport.Kind)
	}

	if strings.TrimSpace(c.LogIndex.URL) == "" {
		return fmt.Errorf("log_index.url is required")
	}
	if strings.TrimSpace(c.LogIndex.Index) == "" {
		return fmt.Errorf("log_index.index is required")
	}
	if c.LogIndex.Timeout <= 0 {
		return fmt.Errorf("log_index.timeout must be > 0")
	}
	if c.LogIndex.PingTimeout <= 0 {
		return fmt.Errorf("log_index.ping_timeout must be > 0")
	}
	if c.LogIndex.QuerySize <= 0 {
		return fmt.Errorf("log_index.query_size must be > 0")
	}

	if c.DocumentStore.URI != "" && strings.TrimSpace(c.DocumentStore.Database) == "" {
		return fmt.Errorf("document_store.database is required when document_store.uri is set")
	}

	if c.CodeStore.Path != "" && c.CodeStore.K <= 0 {
		return fmt.Errorf("code_store.k must be > 0 when code_store.path is set")
	}

	for _, role := range []struct {
		name string
		cfg  LLMRoleConfig
	}{
		{"answerer", c.LLM.Answerer},
		{"log_summarizer", c.LLM.LogSummarizer},
		{"retriever", c.LLM.Retriever},
		{"retrieval_grader", c.LLM.RetrievalGrader},
		{"question_rewriter", c.LLM.QuestionRewriter},
		{"hallucination_grader", c.LLM.HallucinationGrader},
		{"answer_grader", c.LLM.AnswerGrader},
		{"mongodb_retriever", c.LLM.MongoDBRetriever},
		{"opensearch_retriever", c.LLM.OpenSearchRetriever},
	} {
		if strings.TrimSpace(role.cfg.BaseURL) == "" {
			return fmt.Errorf("llm.%s.base_url is required", role.name)
		}
		if strings.TrimSpace(role.cfg.Model) == "" {
			return fmt.Errorf("llm.%s.model is required", role.name)
		}
		if role.cfg.Timeout <= 0 {
			return fmt.Errorf("llm.%s.timeout must be > 0", role.name)
		}
	}

	switch c.Diagnostics.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("diagnostics.log_level must be one of debug, info, warn, error, got %q", c.Diagnostics.LogLevel)
	}

	return nil
}
