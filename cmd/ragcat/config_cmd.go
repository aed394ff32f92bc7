package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ragcat-dev/ragcat/internal/config"
)

// Flags for set-profile.
var (
	setProfileTelegramToken string
	setProfileESURL         string
	setProfileESAPIKey      string
	setProfileMongoURI      string
	setProfileLLMBaseURL    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ragcat configuration and profiles",
	Long: `Manage ragcat configuration profiles.

Profiles allow you to define multiple transport/log-index/document-store/LLM
configurations and switch between them easily (similar to kubectl contexts).

Configuration is stored in ~/.config/ragcat/config.yaml`,
}

var useProfileCmd = &cobra.Command{
	Use:   "use-profile <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if _, err := cfg.GetProfile(name); err != nil {
			return fmt.Errorf("profile %q does not exist", name)
		}

		cfg.CurrentProfile = name
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Printf("Switched to profile %q\n", name)
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:   "set-profile <name>",
	Short: "Create or update a profile",
	Long: `Create or update a named profile with connection settings.

Examples:
  # Create a local development profile
  ragcat config set-profile local --es-url http://localhost:9200 --llm-base-url http://localhost:11434

  # Create a production profile with a secret pulled from the environment
  ragcat config set-profile prod \
    --telegram-token '${RAGCAT_PROD_BOT_TOKEN}' \
    --mongo-uri '${RAGCAT_PROD_MONGO_URI}' \
    --es-url https://logs.internal.example.com:9200

Credentials can be stored as:
  - Environment variable references: ${MY_SECRET} (recommended)
  - Plain text values (warning will be shown)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		profile, _ := cfg.GetProfile(name)

		if setProfileTelegramToken != "" {
			profile.Transport.TelegramToken = setProfileTelegramToken
		}
		if setProfileESURL != "" {
			profile.LogIndex.URL = setProfileESURL
		}
		if setProfileESAPIKey != "" {
			profile.LogIndex.APIKey = setProfileESAPIKey
		}
		if setProfileMongoURI != "" {
			profile.DocumentStore.URI = setProfileMongoURI
		}
		if setProfileLLMBaseURL != "" {
			profile.LLMBaseURL = setProfileLLMBaseURL
		}

		cfg.SetProfile(name, profile)

		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if profile.HasPlainTextCredentials() {
			fmt.Fprintln(cmd.ErrOrStderr(), config.PlainTextCredentialWarning())
			fmt.Fprintln(cmd.ErrOrStderr())
		}

		fmt.Printf("Profile %q saved\n", name)
		return nil
	},
}

var getProfilesCmd = &cobra.Command{
	Use:     "get-profiles",
	Aliases: []string{"list-profiles", "profiles"},
	Short:   "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		names := cfg.ListProfiles()
		if len(names) == 0 {
			fmt.Println("No profiles configured.")
			fmt.Println("Create one with: ragcat config set-profile <name> --es-url <url>")
			return nil
		}

		sort.Strings(names)

		fmt.Println("PROFILES:")
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = "* "
			}
			profile, _ := cfg.GetProfile(name)
			fmt.Printf("%s%-20s  %s\n", marker, name, profile.LogIndex.URL)
		}

		if cfg.CurrentProfile != "" {
			fmt.Printf("\n* = current profile\n")
		}

		return nil
	},
}

var currentProfileCmd = &cobra.Command{
	Use:   "current-profile",
	Short: "Show the current profile name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if cfg.CurrentProfile == "" {
			fmt.Println("No profile selected (using defaults)")
			return nil
		}

		fmt.Println(cfg.CurrentProfile)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if err := cfg.DeleteProfile(name); err != nil {
			return err
		}

		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Printf("Profile %q deleted\n", name)
		return nil
	},
}

var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the full configuration (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if len(cfg.Profiles) == 0 && cfg.CurrentProfile == "" {
			fmt.Println("No configuration found.")
			fmt.Println("Create a profile with: ragcat config set-profile <name> --es-url <url>")
			return nil
		}

		fmt.Println(cfg.String())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	setProfileCmd.Flags().StringVar(&setProfileTelegramToken, "telegram-token", "", "Telegram bot token (supports ${ENV_VAR} syntax)")
	setProfileCmd.Flags().StringVar(&setProfileESURL, "es-url", "", "Log index (Elasticsearch) URL")
	setProfileCmd.Flags().StringVar(&setProfileESAPIKey, "es-api-key", "", "Log index API key (supports ${ENV_VAR} syntax)")
	setProfileCmd.Flags().StringVar(&setProfileMongoURI, "mongo-uri", "", "Document store connection URI (supports ${ENV_VAR} syntax)")
	setProfileCmd.Flags().StringVar(&setProfileLLMBaseURL, "llm-base-url", "", "Shared LLM backend base URL for every role")

	configCmd.AddCommand(useProfileCmd)
	configCmd.AddCommand(setProfileCmd)
	configCmd.AddCommand(getProfilesCmd)
	configCmd.AddCommand(currentProfileCmd)
	configCmd.AddCommand(deleteProfileCmd)
	configCmd.AddCommand(viewConfigCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}
