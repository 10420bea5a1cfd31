// Package config provides configuration management for the KG Mobilians
// payment proxy. Configuration is loaded from a YAML file and can be
// overridden by environment variables.
package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"sync"
)

// Config holds all configuration for the payment proxy. It is built once at
// startup and passed into constructors; handlers never read the environment.
//
// The gateway defaults are literal test placeholders pointing at the vendor
// sandbox host. They must never be used against the production gateway.
type Config struct {
	IsDebug bool `yaml:"is_debug" env:"DEBUG" env-default:"false"`
	Listen  struct {
		BindIP   string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env:"PORT" env-default:"3000"`
		TLS      bool   `yaml:"tls_enabled" env:"TLS_ENABLED" env-default:"false"`
		CertFile string `yaml:"cert_file" env:"TLS_CERT_FILE" env-default:""`
		KeyFile  string `yaml:"key_file" env:"TLS_KEY_FILE" env-default:""`
	} `yaml:"listen"`
	Gateway struct {
		// Service id (merchant code) issued by KG Mobilians
		Sid string `yaml:"sid" env:"KG_SID" env-default:"TEST_SID"`
		// Shared merchant key used for request signing
		MerchantKey string `yaml:"merchant_key" env:"KG_MERCHANT_KEY" env-default:"TEST_KEY"`
		// Vendor API host: test.mobilians.co.kr (sandbox) or mup.mobilians.co.kr
		ApiURL string `yaml:"api_url" env:"KG_API_URL" env-default:"https://test.mobilians.co.kr"`
		// Merchant site URL carried in signed payloads
		SiteURL string `yaml:"site_url" env:"KG_SITE_URL" env-default:"http://localhost:3000"`
	} `yaml:"gateway"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:"admin"`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:""`
	} `yaml:"mongo"`
}

var instance *Config
var once sync.Once

// GetConfig loads configuration from the specified YAML file path.
// Environment variables take precedence over YAML values. This function uses
// a singleton pattern and only loads the config once.
func GetConfig(path string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("load config: %w; %s", err, desc)
			instance = nil
		}
	})
	return instance, err
}
