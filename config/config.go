package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"rewardledger/crypto"
)

// Config is the on-disk rewardsd configuration.
type Config struct {
	// Admin controls initialization, the reward schedule, the epoch clock
	// and the block list. Bech32 ("rwd1...") or 0x-prefixed hex.
	Admin string `toml:"Admin"`
	// Accruers may accrue points and mint or burn credits.
	Accruers []string `toml:"Accruers"`

	Service   Service   `toml:"service"`
	Rewards   Rewards   `toml:"rewards"`
	Launch    Launch    `toml:"launch"`
	Auth      Auth      `toml:"auth"`
	RateLimit RateLimit `toml:"rate_limit"`
	Audit     Audit     `toml:"audit"`
	Logging   Logging   `toml:"logging"`
	Telemetry Telemetry `toml:"telemetry"`
	Webhook   Webhook   `toml:"webhook"`
}

// Load loads the configuration from the given path. A default configuration
// with a freshly generated admin address is written when the file is missing.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Accruers == nil {
		cfg.Accruers = []string{}
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	var admin [crypto.AddressLength]byte
	if _, err := rand.Read(admin[:]); err != nil {
		return nil, fmt.Errorf("config: generate admin address: %w", err)
	}
	cfg := Default()
	cfg.Admin = crypto.Format(admin)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
