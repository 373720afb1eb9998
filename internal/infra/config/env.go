package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/loggo/v2"

	"optitech/internal/infra/execx"
)

var logger = loggo.GetLogger("optitech.config")

// Settings are the environment-driven defaults; command-line flags override them.
type Settings struct {
	ProfilePath    string
	CommandTimeout time.Duration
	NoOpLog        bool
	LogLevel       string
}

// LoadEnvFile loads path when it exists. Variables already set in the
// environment are kept.
func LoadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warningf("ignoring env file %s: %v", path, err)
	}
}

func LoadSettings() Settings {
	s := Settings{
		ProfilePath:    os.Getenv("OPTITECH_PROFILE"),
		CommandTimeout: execx.DefaultTimeout,
		NoOpLog:        envBool("OPTITECH_NO_OPLOG"),
		LogLevel:       strings.TrimSpace(os.Getenv("OPTITECH_LOG_LEVEL")),
	}
	if raw := strings.TrimSpace(os.Getenv("OPTITECH_COMMAND_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			logger.Warningf("invalid OPTITECH_COMMAND_TIMEOUT %q, using %s", raw, execx.DefaultTimeout)
		} else {
			s.CommandTimeout = d
		}
	}
	return s
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
