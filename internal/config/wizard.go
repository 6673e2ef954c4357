package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to pocketvibe.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to Pocket Vibe! Let's configure your instance.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "anthropic", "openrouter", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = DefaultModel(cfg.Provider)

	// 2. Model override.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Listen address.
	listenPrompt := promptui.Prompt{
		Label:   "Listen address",
		Default: cfg.Listen,
	}
	if cfg.Listen, err = listenPrompt.Run(); err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}

	// 4. Public base URL (used in share links and push payloads).
	basePrompt := promptui.Prompt{
		Label:   "Public base URL",
		Default: cfg.BaseURL,
	}
	if cfg.BaseURL, err = basePrompt.Run(); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	// 5. Redis address.
	redisPrompt := promptui.Prompt{
		Label:   "Redis address (task queue + cache)",
		Default: cfg.Redis.Addr,
	}
	if cfg.Redis.Addr, err = redisPrompt.Run(); err != nil {
		return nil, fmt.Errorf("redis address: %w", err)
	}

	// 6. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before starting the worker.\n", envVar)
		}
	}

	configPath := "pocketvibe.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	fmt.Println("Run `pocketvibe vapid` to generate Web Push keys, then `pocketvibe serve`.")
	return cfg, nil
}
