package config

import (
	"errors"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPPort       int    `env:"HTTP_PORT" env-default:"8080"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"file://migrations"`
	RedisURL       string `env:"REDIS_URL"`
	KafkaBrokers   string `env:"KAFKA_BROKERS"`
	KafkaTopic     string `env:"KAFKA_TOPIC" env-default:"coursework.events"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Bucket       string `env:"S3_BUCKET" env-default:"coursework"`
	JWTSecret      string `env:"JWT_SECRET"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"33554432"`
}

func New() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig("./config/.env", &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}
