package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lgiavedoni/claw-tools/internal/types"
)

// DefaultSuppressedSubsystems hides the high-volume background subsystems
// observed in current gateway logs. Deployments can override it because
// the hidden set differs between gateway revisions.
var DefaultSuppressedSubsystems = []string{
	"heartbeat", "memory", "embedding", "diagnostics", "plugins", "socket",
}

// LoadConfig loads configuration from command-line flags and environment
// variables with sensible defaults
func LoadConfig() (*types.Config, error) {
	return LoadConfigWithFlagSet(flag.CommandLine)
}

// LoadConfigWithFlagSet loads configuration using a specific flag set
// This allows for better testing by avoiding global flag conflicts
func LoadConfigWithFlagSet(fs *flag.FlagSet) (*types.Config, error) {
	config := &types.Config{}

	// Define command-line flags with defaults
	httpPort := fs.Int("http-port", 8080, "HTTP port for the dashboard and API")
	logDir := fs.String("log-dir", defaultLogDir(), "Directory containing agent log files")
	logFile := fs.String("log-file", "openclaw.log", "Default log file name")
	defaultLimit := fs.Int("limit", 100, "Default number of feed events per request")
	pollInterval := fs.Duration("poll-interval", 2*time.Second, "Log re-read interval for the live feed stream")
	agentName := fs.String("agent-name", "openclaw", "Subsystem name assigned to top-level agent output")
	suppressed := fs.String("suppressed-subsystems", strings.Join(DefaultSuppressedSubsystems, ","), "Comma-separated subsystem fragments hidden from the feed")

	// Only parse if this is the global command line
	if fs == flag.CommandLine {
		fs.Parse(os.Args[1:])
	}

	// Load from environment variables (override flags)
	config.HTTPPort = getIntFromEnv("CLAWTAIL_HTTP_PORT", *httpPort)
	config.LogDir = getStringFromEnv("CLAWTAIL_LOG_DIR", *logDir)
	config.LogFile = getStringFromEnv("CLAWTAIL_LOG_FILE", *logFile)
	config.DefaultLimit = getIntFromEnv("CLAWTAIL_LIMIT", *defaultLimit)
	config.PollInterval = getDurationFromEnv("CLAWTAIL_POLL_INTERVAL", *pollInterval)
	config.AgentName = getStringFromEnv("CLAWTAIL_AGENT_NAME", *agentName)
	config.SuppressedSubsystems = splitList(getStringFromEnv("CLAWTAIL_SUPPRESSED_SUBSYSTEMS", *suppressed))

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// validateConfig validates the configuration and applies business rules
func validateConfig(config *types.Config) error {
	if config.HTTPPort < 1 || config.HTTPPort > 65535 {
		return fmt.Errorf("http-port must be between 1 and 65535, got %d", config.HTTPPort)
	}

	if strings.TrimSpace(config.LogDir) == "" {
		return fmt.Errorf("log-dir cannot be empty")
	}

	if strings.TrimSpace(config.LogFile) == "" {
		return fmt.Errorf("log-file cannot be empty")
	}

	if config.DefaultLimit < 1 || config.DefaultLimit > 1000 {
		return fmt.Errorf("limit must be between 1 and 1000, got %d", config.DefaultLimit)
	}

	if config.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("poll-interval must be at least 100ms, got %v", config.PollInterval)
	}

	if strings.TrimSpace(config.AgentName) == "" {
		return fmt.Errorf("agent-name cannot be empty")
	}

	return nil
}

// defaultLogDir resolves the agent's log directory under the home directory
func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logs"
	}
	return home + "/.openclaw/logs"
}

// splitList splits a comma-separated flag value, dropping empty entries
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			list = append(list, t)
		}
	}
	return list
}

// Helper functions for environment variable parsing

func getStringFromEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntFromEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationFromEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
