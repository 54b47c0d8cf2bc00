package config

import (
	"errors"
	"os"
)

// ActivityConfig is what the activity-logger binary needs.  It is loaded
// separately from Config so the consumer does not require JWT_SECRET.
type ActivityConfig struct {
	AMQPURL string
	LogPath string
}

// LoadActivityConfig reads RABBITMQ_URL (or AMQP_URL) and ACTIVITY_LOG_PATH.
// A broker URL is required.
func LoadActivityConfig() (ActivityConfig, error) {
	cfg := ActivityConfig{
		AMQPURL: amqpURL(),
		LogPath: envStr("ACTIVITY_LOG_PATH", "logs/saved_events.log"),
	}
	if cfg.AMQPURL == "" {
		return ActivityConfig{}, errors.New("config: RABBITMQ_URL or AMQP_URL must be set")
	}
	return cfg, nil
}

func amqpURL() string { return envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")) }
