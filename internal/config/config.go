// Package config loads application configuration from YAML with
// environment overrides, and holds the one piece of persisted user
// state: the merchant agent's base URL, modeled as an observable
// setting.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Agent    AgentConfig    `yaml:"agent"`
	Merchant MerchantConfig `yaml:"merchant"`
	LLM      LLMConfig      `yaml:"llm"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

type AgentConfig struct {
	Name string `yaml:"name"`
}

type MerchantConfig struct {
	// URL is the default merchant agent base URL; the live value is the
	// observable Setting seeded from it.
	URL string `yaml:"url"`
	// SettingPath is where the user-edited URL is persisted.
	SettingPath string `yaml:"setting_path"`
}

type LLMConfig struct {
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Agent: AgentConfig{
			Name: "shopping-assistant",
		},
		Merchant: MerchantConfig{
			URL:         "http://localhost:8081",
			SettingPath: "agent_url.txt",
		},
		LLM: LLMConfig{
			Model:       "gpt-4o",
			MaxTokens:   2048,
			Temperature: 0.2,
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is
// not an error; defaults plus environment overrides apply.
func LoadConfig(path string, logger *logrus.Logger) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warnf("Configuration file %s not found, using defaults", path)
		applyEnvironmentOverrides(config)
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand ${VAR} references so secrets stay out of the file.
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	applyEnvironmentOverrides(config)

	return config, nil
}

func validateConfig(config *AppConfig) error {
	if config.Agent.Name == "" {
		return fmt.Errorf("agent name cannot be empty")
	}
	if config.HTTP.Port < 0 || config.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", config.HTTP.Port)
	}
	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature out of range: %v", config.LLM.Temperature)
	}
	return nil
}

func applyEnvironmentOverrides(config *AppConfig) {
	if v := os.Getenv("SHOPPING_AGENT_NAME"); v != "" {
		config.Agent.Name = v
	}
	if v := os.Getenv("SHOPPING_MERCHANT_URL"); v != "" {
		config.Merchant.URL = v
	}
	if v := os.Getenv("SHOPPING_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.HTTP.Port = port
		}
	}
	if v := os.Getenv("SHOPPING_LLM_MODEL"); v != "" {
		config.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && config.LLM.APIKey == "" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" && config.LLM.BaseURL == "" {
		config.LLM.BaseURL = v
	}
	if v := os.Getenv("SHOPPING_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}
