package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"adfleet/internal/config/configs"
	"adfleet/internal/core/domain"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	HTTP         configs.HTTP         `envPrefix:"HTTP_"`
	Log          configs.Logger       `envPrefix:"LOG_"`
	Psql         configs.Postgres     `envPrefix:"PSQL_"`
	Store        configs.Store        `envPrefix:"STORE_"`
	Auth         configs.Auth         `envPrefix:"AUTH_"`
	Storage      configs.Storage      `envPrefix:"STORAGE_"`
	Redis        configs.Redis        `envPrefix:"REDIS_"`
	Inventory    configs.Inventory    `envPrefix:"INVENTORY_"`
	Verification configs.Verification `envPrefix:"VERIFY_"`
	Tariff       configs.Tariff       `envPrefix:"TARIFF_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing fails, an error is returned. All fields are loaded with their
// specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if p := c.Inventory.CancelPolicy; p != "" && domain.ParseCancelPolicy(p) != domain.CancelPolicy(p) {
		return fmt.Errorf("unknown cancel policy %q", p)
	}
	if _, err := c.Verification.Location(); err != nil {
		return err
	}
	if c.Inventory.MaxActiveBanners < 1 {
		return fmt.Errorf("INVENTORY_MAX_ACTIVE_BANNERS must be positive, got %d", c.Inventory.MaxActiveBanners)
	}
	return nil
}

// Tariffs returns the daily rate table.
func (c Config) Tariffs() domain.TariffTable {
	return domain.TariffTable{
		domain.VehicleAuto: c.Tariff.Auto,
		domain.VehicleCar:  c.Tariff.Car,
	}
}
