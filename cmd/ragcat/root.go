package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ragcat-dev/ragcat/internal/config"
)

// Global flags shared across commands. Values are bound via Viper;
// variables keep Cobra compatibility (spec.md §6 configuration surface).
var (
	profileFlag     string
	esURLFlag       string
	indexFlag       string
	pingTimeoutFlag time.Duration
	querySizeFlag   int
	mongoURIFlag    string
	mongoDBFlag     string
	codePathFlag    string
	codeGlobFlag    string
	ollamaURLFlag   string
	telegramFlag    string
	debugFlag       bool
	logLevelFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "ragcat",
	Short: "Conversational log-and-incident investigation assistant",
	Long: `ragcat retrieves matching log records for an operator's question, enriches
them with document-store records and source-code excerpts, grades the
evidence and the generated answer, and streams progress back over a
chat transport.

Use 'ragcat serve' to run the Telegram-backed pipeline, or 'ragcat chat'
for a local interactive session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.SetProfileFlag(profileFlag)
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		if ollamaURLFlag != "" {
			fanOutOllamaURL(&cfg, ollamaURLFlag)
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

// fanOutOllamaURL applies a single shared backend URL to every LLM
// role, mirroring how a profile's llm_base_url is fanned out in
// config.applyProfile — the CLI flag takes the same shortcut instead
// of requiring nine separate --llm-<role>-base-url flags.
func fanOutOllamaURL(cfg *config.Config, url string) {
	cfg.LLM.Answerer.BaseURL = url
	cfg.LLM.LogSummarizer.BaseURL = url
	cfg.LLM.Retriever.BaseURL = url
	cfg.LLM.RetrievalGrader.BaseURL = url
	cfg.LLM.QuestionRewriter.BaseURL = url
	cfg.LLM.HallucinationGrader.BaseURL = url
	cfg.LLM.AnswerGrader.BaseURL = url
	cfg.LLM.MongoDBRetriever.BaseURL = url
	cfg.LLM.OpenSearchRetriever.BaseURL = url
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Configuration profile to use (overrides current-profile in config)")
	rootCmd.PersistentFlags().StringVar(&esURLFlag, "es-url", config.DefaultESURL, "Log index (Elasticsearch) URL (env: RAGCAT_LOG_INDEX_URL)")
	rootCmd.PersistentFlags().StringVarP(&indexFlag, "index", "i", config.DefaultLogIndex, "Log index pattern (env: RAGCAT_LOG_INDEX_INDEX)")
	rootCmd.PersistentFlags().DurationVar(&pingTimeoutFlag, "ping-timeout", config.DefaultPingTimeout, "Log index ping timeout")
	rootCmd.PersistentFlags().IntVar(&querySizeFlag, "query-size", config.DefaultQuerySize, "Log index result size per search")
	rootCmd.PersistentFlags().StringVar(&mongoURIFlag, "mongo-uri", "", "Document store connection URI (env: RAGCAT_DOCUMENT_STORE_URI)")
	rootCmd.PersistentFlags().StringVar(&mongoDBFlag, "mongo-database", config.DefaultMongoDatabase, "Document store database name")
	rootCmd.PersistentFlags().StringVar(&codePathFlag, "code-path", "", "Code store root directory (enables CodeRetriever when set)")
	rootCmd.PersistentFlags().StringVar(&codeGlobFlag, "code-glob", config.DefaultCodeGlob, "Code store file glob")
	rootCmd.PersistentFlags().StringVar(&ollamaURLFlag, "ollama-url", "", "Shared LLM backend URL applied to every configured role")
	rootCmd.PersistentFlags().StringVar(&telegramFlag, "telegram-token", "", "Telegram bot token (env: RAGCAT_TRANSPORT_TELEGRAM_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
}
