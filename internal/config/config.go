package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env               string            `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer        HTTPServer        `yaml:"http_server"`
	DB                DB                `yaml:"db"`
	Cache             Cache             `yaml:"cache"`
	Token             Token             `yaml:"token"`
	EmailVerification EmailVerification `yaml:"email_verification"`
	AdminToken        string            `yaml:"admin_token" env:"ADMIN_TOKEN" env-required:"true"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	MaxBodySize int64         `yaml:"max_body_size" env-default:"10485760"`
}

type DB struct {
	Addr     string `yaml:"addr" env:"DB_ADDR" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DB       string `yaml:"db" env:"DB_NAME" env-default:"jsonstore"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
}

type Cache struct {
	Addr      string        `yaml:"addr" env:"CACHE_ADDR" env-default:"localhost:6379"`
	Password  string        `yaml:"password" env:"CACHE_PASSWORD"`
	DB        int           `yaml:"db" env:"CACHE_DB" env-default:"0"`
	ItemsTTL  time.Duration `yaml:"items_ttl" env-default:"10m"`
	TokensTTL time.Duration `yaml:"tokens_ttl" env-default:"24h"`
}

type Token struct {
	Issuer  string        `yaml:"issuer" env-default:"jsonstore"`
	TTL     time.Duration `yaml:"ttl" env-default:"24h"`
	KeyPath string        `yaml:"key_path" env:"TOKEN_KEY_PATH" env-default:"./storage/token.pem"`
}

type EmailVerification struct {
	BaseURL            string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	VerifyPath         string `yaml:"verify_path" env-default:"/verify-email"`
	PublicRegistration bool   `yaml:"public_registration" env:"PUBLIC_REGISTRATION" env-default:"false"`
}

// MustLoad reads the config file named by --config or CONFIG_PATH and
// overlays environment variables on top of it.
func MustLoad() *Config {
	cfg, err := Load(configPath())
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

func configPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
