package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/ai"
	"github.com/custodia-labs/askdocs/internal/core/domain"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View, create and check the askdocs settings file.

Secrets are best left out of the file and given through the environment
(API_KEY, WEBHOOK_KEY, STORE_TOKEN, OPENAI_API_KEY, LLM_API_KEY,
ANTHROPIC_API_KEY) or a .env file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the AI providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, err := newSettingsStore()
	if err != nil {
		return err
	}

	path := store.Path()
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := store.Save(domain.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Wrote default settings to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := newSettingsStore()
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", store.Path())
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr())
	cmd.Printf("  API Key: %s\n", secretStatus(settings.Server.APIKey))
	cmd.Printf("  Webhook Key: %s\n", secretStatus(settings.Server.WebhookKey))
	cmd.Printf("  Allowed Origin: %s\n", settings.Server.AllowedOrigin)
	cmd.Printf("  Request Timeout: %ds\n", settings.Server.RequestTimeoutSeconds)
	cmd.Println()

	cmd.Println("[Source]")
	cmd.Printf("  Type: %s\n", settings.Source.Type)
	switch settings.Source.Type {
	case domain.SourceFilesystem:
		cmd.Printf("  Path: %s\n", settings.Source.Path)
	case domain.SourceHTTP:
		cmd.Printf("  Base URL: %s\n", settings.Source.BaseURL)
	case domain.SourceGCS:
		cmd.Printf("  Bucket: %s\n", settings.Source.Bucket)
	case domain.SourceGitHub:
		cmd.Printf("  Repository: %s\n", settings.Source.Repository)
	}
	if settings.Source.Prefix != "" {
		cmd.Printf("  Prefix: %s\n", settings.Source.Prefix)
	}
	if settings.Source.Type.IsRemote() {
		cmd.Printf("  Token: %s\n", secretStatus(settings.Source.Token))
	}
	if len(settings.Source.Files) > 0 {
		cmd.Printf("  Files: %d listed\n", len(settings.Source.Files))
	}
	cmd.Printf("  On Error: %s\n", settings.Source.OnError)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d tokens\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d tokens\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if !settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	} else {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if !settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	} else {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend)
	if settings.Cache.Backend == domain.CacheSQLite && settings.Cache.Dir != "" {
		cmd.Printf("  Dir: %s\n", settings.Cache.Dir)
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	// Validation
	if err := settings.ValidateServer(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'askdocs config check' after fixing the configuration.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	failed := 0
	for _, r := range ai.Check(cmd.Context(), &settings) {
		if r.OK() {
			cmd.Printf("  ok    %-9s %s (%s) in %s\n", r.Component, r.Provider, r.Model, r.Latency.Round(time.Millisecond))
			continue
		}
		failed++
		cmd.Printf("  FAIL  %-9s %s (%s): %v\n", r.Component, r.Provider, r.Model, r.Err)
	}

	if settings.Server.APIKey == "" {
		cmd.Println("Note: API_KEY is not set; 'askdocs serve' will refuse to start.")
	}

	if failed > 0 {
		return errors.New("provider check failed")
	}
	cmd.Println("All providers reachable.")
	return nil
}

func secretStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
