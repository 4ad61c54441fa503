package internal

import (
	"fmt"
	"time"
)

type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL,required=true"`
	LogLevel       string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=15s"`

	PollInterval                time.Duration `env:"POLL_INTERVAL,default=10s"`
	ReconcileDelay              time.Duration `env:"RECONCILE_DELAY,default=500ms"`
	NotificationRefreshInterval time.Duration `env:"NOTIFICATION_REFRESH_INTERVAL,default=60s"`
	RestartInterval             time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	BannedWords     []string `env:"BANNED_WORDS"`
	CharReplacement string   `env:"CHARACTER_REPLACEMENT,default=*"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
