package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr = ":3000"
	DefaultTokenURL   = "https://login.eveonline.com/oauth/token"
	DefaultVerifyURL  = "https://login.eveonline.com/oauth/verify"
)

// Storage backend names accepted in the config file.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMySQL  = "mysql"
)

type MySQLConfig struct {
	Dsn             string `yaml:"dsn"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	ConnMaxIdleTime int    `yaml:"connMaxIdleTime"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"`
}

type SSOConfig struct {
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
	TokenURL     string `yaml:"tokenURL"`
	VerifyURL    string `yaml:"verifyURL"`
}

type Config struct {
	Debug        bool        `yaml:"debug"`
	ListenAddr   string      `yaml:"listenAddr"`
	AllowOrigins []string    `yaml:"allowOrigins"`
	Storage      string      `yaml:"storage"`
	RedisURL     string      `yaml:"redisURL"`
	MySQL        MySQLConfig `yaml:"mysql"`
	SSO          SSOConfig   `yaml:"sso"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Storage == "" {
		c.Storage = StorageMemory
	}
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("storage %q requires redisURL", c.Storage)
		}
	case StorageMySQL:
		if c.MySQL.Dsn == "" {
			return fmt.Errorf("storage %q requires mysql.dsn", c.Storage)
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage)
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{"*"}
	}
	if c.SSO.TokenURL == "" {
		c.SSO.TokenURL = DefaultTokenURL
	}
	if c.SSO.VerifyURL == "" {
		c.SSO.VerifyURL = DefaultVerifyURL
	}
	if c.SSO.ClientID == "" || c.SSO.ClientSecret == "" {
		return fmt.Errorf("sso.clientID and sso.clientSecret are required")
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
