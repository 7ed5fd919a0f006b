package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// LedgerConfig carries the ledger policy knobs. DefaultCheckinPoints seeds
// the per-context config of newly created contexts; existing contexts keep
// whatever an admin set for them.
type LedgerConfig struct {
	DefaultCheckinPoints int    `yaml:"defaultCheckinPoints" validate:"min:0"`
	BonusMode            string `yaml:"bonusMode" validate:"required|in:flat,streakSquared"`
	DeliveryPolicy       string `yaml:"deliveryPolicy" validate:"required|in:relaxed,strict"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Ledger      LedgerConfig  `yaml:"ledger"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

const (
	BonusModeFlat          = "flat"
	BonusModeStreakSquared = "streakSquared"

	DeliveryPolicyRelaxed = "relaxed"
	DeliveryPolicyStrict  = "strict"
)
