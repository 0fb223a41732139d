package configs

import (
	"fmt"
	"time"
)

// Verification configures the same-day photo rule.
type Verification struct {
	// Timezone is the IANA zone whose calendar day a photo must match.
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
}

// Location loads the configured time zone.
func (c Verification) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("verify timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Tariff holds daily rates in rupees per vehicle class.
type Tariff struct {
	Auto int64 `env:"AUTO" envDefault:"70"`
	Car  int64 `env:"CAR" envDefault:"100"`
}
