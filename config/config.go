package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Database
	Postgres
	SQLite
	Storage
	MinIO
	HTTPServer
	Log
	View
	Tracing
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" env-default:"sqlite"`
}

type Postgres struct {
	User       string        `env:"POSTGRES_USER" env-default:"postgres"`
	Pass       string        `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Host       string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port       string        `env:"POSTGRES_PORT" env-default:"5432"`
	DB         string        `env:"POSTGRES_DB" env-default:"blog"`
	Timeout    time.Duration `env:"POSTGRES_TIMEOUT" env-default:"5s"`
	Migrations string        `env:"POSTGRES_MIGRATIONS"`
}

// DSN builds a lib/pq connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"postgresql://%v:%v@%v:%v/%v?sslmode=disable&connect_timeout=%d",
		p.User, p.Pass, p.Host, p.Port, p.DB, int(p.Timeout.Seconds()))
}

type SQLite struct {
	Path string `env:"SQLITE_PATH" env-default:"./blog.db"`
}

type Storage struct {
	Backend          string `env:"STORAGE_BACKEND" env-default:"local"`
	UploadsDir       string `env:"UPLOADS_DIR" env-default:"./public/uploads"`
	PublicPrefix     string `env:"UPLOADS_PUBLIC_PREFIX" env-default:"/uploads"`
	CleanupOnFailure bool   `env:"UPLOADS_CLEANUP_ON_FAILURE" env-default:"false"`
}

type MinIO struct {
	User   string `env:"MINIO_USER" env-default:"minioadmin"`
	Pass   string `env:"MINIO_PASSWORD" env-default:"minioadmin"`
	Host   string `env:"MINIO_HOST" env-default:"localhost"`
	Port   string `env:"MINIO_PORT" env-default:"9000"`
	Bucket string `env:"MINIO_BUCKET" env-default:"uploads"`
	Secure bool   `env:"MINIO_SECURE" env-default:"false"`
}

type HTTPServer struct {
	BindAddress     string        `env:"BIND_ADDRESS" env-default:"localhost"`
	BindPort        string        `env:"BIND_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"15s"`
	AllowOrigins    []string      `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"*"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
	Dev   bool   `env:"LOG_DEV" env-default:"false"`
}

type View struct {
	TimeZone     string `env:"DISPLAY_TIMEZONE" env-default:"Local"`
	DefaultCover string `env:"DEFAULT_COVER_IMAGE" env-default:"/static/default-cover.svg"`
}

// Location resolves TimeZone, falling back to time.Local for "Local" or "".
func (v View) Location() (*time.Location, error) {
	if v.TimeZone == "" || v.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(v.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation: %v", err)
	}
	return loc, nil
}

type Tracing struct {
	Enabled     bool   `env:"TRACING_ENABLED" env-default:"false"`
	ServiceName string `env:"TRACING_SERVICE_NAME" env-default:"blog-service"`
}

// New reads configuration from the environment. When env is not empty the
// dotenv file is loaded first and overrides already set variables.
func New(env string) (*Config, error) {
	conf := &Config{}

	if env != "" {
		if err := godotenv.Overload(env); err != nil {
			return nil, fmt.Errorf("godotenv.Overload: %v", err)
		}
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("cleanenv.Readenv: %v", err)
	}

	return conf, nil
}
