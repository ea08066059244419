package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type OrderConfig struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	OrderDB    `yaml:"order_db"`
	LogConfig  `yaml:"log_config"`
	Mpesa      `yaml:"mpesa"`
	Kafka      `yaml:"kafka-service"`
	JWT        `yaml:"jwt"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type OrderDB struct {
	Dsn            string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
}

type Mpesa struct {
	BaseURL        string        `yaml:"base_url"`
	ConsumerKey    string        `yaml:"consumer_key" env:"MPESA_CONSUMER_KEY"`
	ConsumerSecret string        `yaml:"consumer_secret" env:"MPESA_CONSUMER_SECRET"`
	Shortcode      string        `yaml:"shortcode"`
	Passkey        string        `yaml:"passkey" env:"MPESA_PASSKEY"`
	CallbackURL    string        `yaml:"callback_url"`
	Timeout        time.Duration `yaml:"timeout" env-default:"30s"`
}

type Kafka struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"order-events"`
}

type JWT struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
}

func MustLoad() *OrderConfig {
	configPath := os.Getenv("ORDER_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("ORDER_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg OrderConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
