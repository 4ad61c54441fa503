package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	APIBaseURL string `envconfig:"E2E_API_BASE_URL"`
	Username   string `envconfig:"E2E_USERNAME"`
	Password   string `envconfig:"E2E_PASSWORD"`
	PeerID     string `envconfig:"E2E_PEER_ID"`

	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
