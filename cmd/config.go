package cmd

type Config struct {
	HTTPPort          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSslMode         string
	RedisAddr         string
	GeocoderBaseURL   string
	DepotLatitude     float64
	DepotLongitude    float64
	BaseSpeedKmh      float64
	ZoneConfigPath    string
	LocationQueueSize int
}
