package configs

// Store selects the inventory backend.
type Store struct {
	// Driver is "postgres" or "memory".
	Driver string `env:"DRIVER" envDefault:"postgres"`
}

// Memory reports whether the in-memory backend is selected.
func (c Store) Memory() bool {
	return c.Driver == "memory"
}
