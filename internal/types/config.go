package types

import "time"

// Config holds all configuration options for the application
type Config struct {
	HTTPPort             int           `json:"http_port"`
	LogDir               string        `json:"log_dir"`
	LogFile              string        `json:"log_file"`
	DefaultLimit         int           `json:"default_limit"`
	PollInterval         time.Duration `json:"poll_interval"`
	AgentName            string        `json:"agent_name"`
	SuppressedSubsystems []string      `json:"suppressed_subsystems"`
}
