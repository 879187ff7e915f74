package config

import (
	"os"
	"time"
)

// Config carries the runtime settings for the POS data layer.
type Config struct {
	DataDir            string
	OrdersCollection   string
	ProductsCollection string
	SyncInterval       time.Duration
	IdentityWait       time.Duration
}

// Load reads configuration from the environment with sensible defaults.
func Load() Config {
	return Config{
		DataDir:            getenv("POS_DATA_DIR", "./data"),
		OrdersCollection:   getenv("POS_ORDERS_COLLECTION", "orders"),
		ProductsCollection: getenv("POS_PRODUCTS_COLLECTION", "products"),
		SyncInterval:       getduration("POS_SYNC_INTERVAL", 5*time.Second),
		IdentityWait:       getduration("POS_IDENTITY_WAIT", time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
