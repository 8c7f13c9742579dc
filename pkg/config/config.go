// Package config loads server settings from the environment
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

// Settings holds the environment-driven configuration for the server.
// Command line flags take precedence over these values.
type Settings struct {
	// KubeconfigDir is the directory scanned for kubeconfig files
	KubeconfigDir string `env:"KUBECONFIG_DIR"`
	// Port is the port to listen on for network transports
	Port int `env:"MCP_PORT" envDefault:"8080"`
	// Transport selects the MCP transport: stdio, sse or streamable-http
	Transport string `env:"MCP_TRANSPORT" envDefault:"stdio"`
	// EnableRateLimiting toggles per-session tool rate limits
	EnableRateLimiting bool `env:"MCP_RATE_LIMITING" envDefault:"true"`
}

// Load parses Settings from the environment and fills in derived defaults
func Load() (*Settings, error) {
	settings := &Settings{}
	if err := env.Parse(settings); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if settings.KubeconfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		settings.KubeconfigDir = filepath.Join(home, ".kube")
	}

	if settings.Port < 1 || settings.Port > 65535 {
		return nil, fmt.Errorf("port %d out of valid range (1-65535)", settings.Port)
	}

	// A kubeconfig file path is accepted too; its parent directory is scanned
	if info, err := os.Stat(settings.KubeconfigDir); err == nil && !info.IsDir() {
		settings.KubeconfigDir = filepath.Dir(settings.KubeconfigDir)
	}

	return settings, nil
}

// Address returns the listen address for network transports
func (s *Settings) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}
