package configs

import "time"

// Auth configures bearer token validation. Tokens are HS256 JWTs signed
// with JWTSecret.
type Auth struct {
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	Issuer    string        `env:"ISSUER" envDefault:"adfleet"`
	Leeway    time.Duration `env:"LEEWAY" envDefault:"30s"`
}
