package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"rewardledger/crypto"
	"rewardledger/native/rewards"
)

// MinSecretLength is the shortest accepted JWT HMAC secret.
const MinSecretLength = 32

// Validate checks that the configuration can start a service.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Service.ListenAddress) == "" {
		return fmt.Errorf("service: ListenAddress required")
	}
	if strings.TrimSpace(c.Service.DataDir) == "" {
		return fmt.Errorf("service: DataDir required")
	}
	params, err := c.RewardsParams()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := c.LaunchTime(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Auth.SecretEnv) == "" {
		return fmt.Errorf("auth: SecretEnv required")
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values must not be negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("rate_limit: Burst must be positive when RequestsPerSecond is set")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: SampleRatio must be within [0,1]")
	}
	if endpoint := strings.TrimSpace(c.Webhook.Endpoint); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			return fmt.Errorf("webhook: Endpoint must be an http(s) URL")
		}
		if strings.TrimSpace(c.Webhook.SecretEnv) == "" {
			return fmt.Errorf("webhook: SecretEnv required when Endpoint is set")
		}
		if c.Webhook.MaxBackoff.Duration < c.Webhook.MinBackoff.Duration {
			return fmt.Errorf("webhook: MaxBackoff must not be below MinBackoff")
		}
	}
	return nil
}

// AdminAddress parses the administrator address.
func (c *Config) AdminAddress() ([20]byte, error) {
	if strings.TrimSpace(c.Admin) == "" {
		return [20]byte{}, fmt.Errorf("config: Admin address required")
	}
	addr, err := crypto.ParseAddress(c.Admin)
	if err != nil {
		return [20]byte{}, fmt.Errorf("config: Admin: %w", err)
	}
	return addr, nil
}

// AccruerAddresses parses the privileged accruer set.
func (c *Config) AccruerAddresses() ([][20]byte, error) {
	out := make([][20]byte, 0, len(c.Accruers))
	for i, raw := range c.Accruers {
		addr, err := crypto.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("config: Accruers[%d]: %w", i, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// RewardsParams converts the configuration into engine parameters.
func (c *Config) RewardsParams() (rewards.Params, error) {
	admin, err := c.AdminAddress()
	if err != nil {
		return rewards.Params{}, err
	}
	accruers, err := c.AccruerAddresses()
	if err != nil {
		return rewards.Params{}, err
	}
	params := rewards.DefaultParams(admin)
	if len(accruers) > 0 {
		params.Accruers = accruers
	}
	if c.Rewards.ClaimsOpenEpoch != 0 {
		params.ClaimsOpenEpoch = c.Rewards.ClaimsOpenEpoch
	}
	if c.Rewards.CutoverEpoch != 0 {
		params.CutoverEpoch = c.Rewards.CutoverEpoch
	}
	if c.Rewards.ClaimWindow.Duration != 0 {
		params.ClaimWindow = c.Rewards.ClaimWindow.Duration
	}
	if c.Rewards.BootstrapSchedule != nil {
		params.BootstrapSchedule = append([]uint64(nil), c.Rewards.BootstrapSchedule...)
	}
	return params, nil
}

// LaunchTime parses the program launch instant.
func (c *Config) LaunchTime() (time.Time, error) {
	raw := strings.TrimSpace(c.Launch.Time)
	if raw == "" {
		return time.Time{}, fmt.Errorf("launch: Time required")
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("launch: Time: %w", err)
	}
	return at, nil
}

// JWTSecret reads the HMAC secret from the configured environment variable.
func (c *Config) JWTSecret() ([]byte, error) {
	name := strings.TrimSpace(c.Auth.SecretEnv)
	secret := strings.TrimSpace(os.Getenv(name))
	if secret == "" {
		return nil, fmt.Errorf("auth: environment variable %s is empty", name)
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: secret in %s shorter than %d bytes", name, MinSecretLength)
	}
	return []byte(secret), nil
}

// WebhookSecret reads the webhook signing secret from the environment.
func (c *Config) WebhookSecret() ([]byte, error) {
	name := strings.TrimSpace(c.Webhook.SecretEnv)
	secret := strings.TrimSpace(os.Getenv(name))
	if secret == "" {
		return nil, fmt.Errorf("webhook: environment variable %s is empty", name)
	}
	return []byte(secret), nil
}
