package configs

// Storage configures the S3 compatible bucket holding verification photos.
// An empty Bucket keeps photos in memory.
type Storage struct {
	Bucket string `env:"BUCKET"`
	Region string `env:"REGION" envDefault:"ap-south-1"`
	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `env:"ENDPOINT"`
	Prefix   string `env:"PREFIX" envDefault:"verifications/"`
}
