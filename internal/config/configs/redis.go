package configs

import "time"

// Redis configures the distributed banner lock. An empty Address falls back
// to an in-process lock, which is only safe for a single replica.
type Redis struct {
	// Address is host:port or a redis:// URL.
	Address string `env:"ADDRESS"`
	// LockTTL bounds how long a crashed holder blocks a banner. Live
	// holders renew their lock every LockTTL/3.
	LockTTL time.Duration `env:"LOCK_TTL" envDefault:"10s"`
}
