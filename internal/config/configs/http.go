package configs

import "time"

// HTTP defines configuration for the HTTP server.
type HTTP struct {
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port         uint16        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	// UploadLimitBytes caps the size of a verification photo upload.
	UploadLimitBytes int64 `env:"UPLOAD_LIMIT_BYTES" envDefault:"5242880"`
	// UploadRPS and UploadBurst throttle photo uploads per principal.
	UploadRPS   float64 `env:"UPLOAD_RPS" envDefault:"1"`
	UploadBurst int     `env:"UPLOAD_BURST" envDefault:"5"`
}
