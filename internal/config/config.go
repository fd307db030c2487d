// Package config содержит логику чтения конфигурации клиента FoodieHub.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// ClientConfig содержит параметры конфигурации терминального клиента.
type ClientConfig struct {
	APIBaseURL string `env:"FOODIEHUB_API_URL"`
	StateDir   string `env:"FOODIEHUB_STATE_DIR"`
}

// ParseClient считывает конфигурацию клиента из флагов командной строки и
// переменных окружения. Значение из окружения имеет приоритет над флагом.
func ParseClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envAPIBaseURL := cfg.APIBaseURL
	envStateDir := cfg.StateDir

	flag.StringVar(&cfg.APIBaseURL, "u", "http://localhost:5000", "base URL of the FoodieHub API server")
	flag.StringVar(&cfg.StateDir, "s", "", "directory for persisted client state")

	flag.Parse()

	if envAPIBaseURL != "" {
		cfg.APIBaseURL = envAPIBaseURL
	}
	if envStateDir != "" {
		cfg.StateDir = envStateDir
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:5000"
	}
	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}

	return cfg, nil
}

// StubConfig содержит параметры конфигурации заглушки сервера.
type StubConfig struct {
	RunAddress string `env:"RUN_ADDRESS"`
	AuthSecret string `env:"AUTH_SECRET"`
}

// ParseStub считывает конфигурацию заглушки сервера из флагов командной
// строки и переменных окружения. Значение из окружения имеет приоритет
// над флагом.
func ParseStub() (*StubConfig, error) {
	cfg := &StubConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envAuthSecret := cfg.AuthSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:5000", "address and port for the stub API server")
	flag.StringVar(&cfg.AuthSecret, "k", "", "secret key for signing bearer tokens")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:5000"
	}

	return cfg, nil
}

// defaultStateDir возвращает каталог состояния по умолчанию в домашнем
// каталоге пользователя.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".foodiehub"
	}
	return filepath.Join(home, ".foodiehub")
}
