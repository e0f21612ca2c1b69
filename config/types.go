package config

import (
	"fmt"
	"strings"
	"time"

	"rewardledger/native/rewards"
)

// Duration is a time.Duration written as a Go duration string ("672h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Service configures the HTTP listener and the data directory.
type Service struct {
	ListenAddress string   `toml:"ListenAddress"`
	DataDir       string   `toml:"DataDir"`
	Environment   string   `toml:"Environment"`
	ReadTimeout   Duration `toml:"ReadTimeout"`
	WriteTimeout  Duration `toml:"WriteTimeout"`
}

// Rewards configures the claim rules and the bootstrap schedule.
type Rewards struct {
	ClaimsOpenEpoch   uint64   `toml:"ClaimsOpenEpoch"`
	CutoverEpoch      uint64   `toml:"CutoverEpoch"`
	ClaimWindow       Duration `toml:"ClaimWindow"`
	BootstrapSchedule []uint64 `toml:"BootstrapSchedule"`
}

// Launch records the one-time program launch as an RFC 3339 timestamp.
type Launch struct {
	Time string `toml:"Time"`
}

// Auth configures bearer token verification. The HMAC secret is read from
// the environment variable named by SecretEnv.
type Auth struct {
	SecretEnv string   `toml:"SecretEnv"`
	Issuer    string   `toml:"Issuer"`
	Audience  string   `toml:"Audience"`
	ClockSkew Duration `toml:"ClockSkew"`
}

// RateLimit bounds requests per caller.
type RateLimit struct {
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
}

// Audit configures the SQL audit sink. An empty DSN disables it.
type Audit struct {
	DSN string `toml:"DSN"`
}

// Logging configures the structured logger.
type Logging struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

// Telemetry configures OTLP export.
type Telemetry struct {
	Endpoint    string  `toml:"Endpoint"`
	Insecure    bool    `toml:"Insecure"`
	Headers     string  `toml:"Headers"`
	Traces      bool    `toml:"Traces"`
	Metrics     bool    `toml:"Metrics"`
	SampleRatio float64 `toml:"SampleRatio"`
}

// Webhook configures outbound event delivery. An empty Endpoint disables it.
type Webhook struct {
	Endpoint    string   `toml:"Endpoint"`
	SecretEnv   string   `toml:"SecretEnv"`
	Topics      []string `toml:"Topics"`
	MaxAttempts int      `toml:"MaxAttempts"`
	MinBackoff  Duration `toml:"MinBackoff"`
	MaxBackoff  Duration `toml:"MaxBackoff"`
}

// DefaultWebhookSecretEnv names the environment variable holding the webhook
// signing secret.
const DefaultWebhookSecretEnv = "REWARDSD_WEBHOOK_SECRET"

// DefaultSecretEnv names the environment variable holding the JWT secret.
const DefaultSecretEnv = "REWARDSD_JWT_SECRET"

// Default returns the configuration used for new installations. Admin is
// left empty.
func Default() *Config {
	return &Config{
		Accruers: []string{},
		Service: Service{
			ListenAddress: ":8090",
			DataDir:       "./rewards-data",
			Environment:   "local",
			ReadTimeout:   Duration{10 * time.Second},
			WriteTimeout:  Duration{10 * time.Second},
		},
		Rewards: Rewards{
			ClaimsOpenEpoch:   rewards.DefaultClaimsOpenEpoch,
			CutoverEpoch:      rewards.DefaultCutoverEpoch,
			ClaimWindow:       Duration{rewards.DefaultClaimWindow},
			BootstrapSchedule: append([]uint64(nil), rewards.DefaultBootstrapSchedule...),
		},
		Launch: Launch{Time: "2030-01-01T00:00:00Z"},
		Auth: Auth{
			SecretEnv: DefaultSecretEnv,
			Issuer:    "rewardsd",
			Audience:  "rewardledger",
			ClockSkew: Duration{30 * time.Second},
		},
		RateLimit: RateLimit{RequestsPerSecond: 20, Burst: 40},
		Audit:     Audit{DSN: "file:rewards-audit.db"},
		Logging: Logging{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Telemetry: Telemetry{Endpoint: "localhost:4318", Insecure: true},
		Webhook: Webhook{
			SecretEnv:   DefaultWebhookSecretEnv,
			MaxAttempts: 5,
			MinBackoff:  Duration{2 * time.Second},
			MaxBackoff:  Duration{30 * time.Second},
		},
	}
}
