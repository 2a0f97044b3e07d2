package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	JWT      JWTConfig      `koanf:"jwt"`
	Auth     AuthConfig     `koanf:"auth"`
	Cache    CacheConfig    `koanf:"cache"`
	Weather  WeatherConfig  `koanf:"weather"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Log      LogConfig      `koanf:"log"`
	Seed     SeedConfig     `koanf:"seed"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

type DatabaseConfig struct {
	Host         string        `koanf:"host" validate:"required"`
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	User         string        `koanf:"user" validate:"required"`
	Password     string        `koanf:"password"`
	Database     string        `koanf:"name" validate:"required"`
	SSLMode      string        `koanf:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns int           `koanf:"max_idle_conns" validate:"min=0"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

type JWTConfig struct {
	Key      string `koanf:"key" validate:"required,min=16"`
	Issuer   string `koanf:"issuer" validate:"required"`
	Audience string `koanf:"audience" validate:"required"`
}

type AuthConfig struct {
	// PasswordHasher selects the digest written for new passwords.
	PasswordHasher string `koanf:"password_hasher" validate:"oneof=sha256 bcrypt"`
}

type CacheConfig struct {
	Driver           string        `koanf:"driver" validate:"oneof=redis memory none"`
	RedisAddr        string        `koanf:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword    string        `koanf:"redis_password"`
	RedisDB          int           `koanf:"redis_db" validate:"min=0"`
	DialTimeout      time.Duration `koanf:"dial_timeout"`
	OpTimeout        time.Duration `koanf:"op_timeout"`
	TTL              time.Duration `koanf:"ttl"`
	BreakerFailures  uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerOpenFor   time.Duration `koanf:"breaker_open_for"`
	BreakerHalfOpens uint32        `koanf:"breaker_half_open_requests" validate:"min=1"`
}

type WeatherConfig struct {
	Provider     string        `koanf:"provider" validate:"oneof=synthetic openweathermap"`
	Country      string        `koanf:"country" validate:"len=2"`
	APIKey       string        `koanf:"api_key" validate:"required_if=Provider openweathermap"`
	BaseURL      string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout      time.Duration `koanf:"timeout"`
	RateLimitRPS float64       `koanf:"rate_limit_rps" validate:"gt=0"`
	RateBurst    int           `koanf:"rate_burst" validate:"min=1"`
	WarmSchedule string        `koanf:"warm_schedule"`
}

type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic" validate:"required_with=Brokers"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
	File   string `koanf:"file"`
}

type SeedConfig struct {
	AdminPassword string `koanf:"admin_password" validate:"required"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000", "https://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Password:     "postgres",
			Database:     "users",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			QueryTimeout: 5 * time.Second,
		},
		JWT: JWTConfig{
			Key:      "YourSecretKeyForJwtTokenGeneration2024",
			Issuer:   "UserManagementAPI",
			Audience: "UserManagementAPI",
		},
		Auth: AuthConfig{
			PasswordHasher: "sha256",
		},
		Cache: CacheConfig{
			Driver:           "redis",
			RedisAddr:        "localhost:6379",
			DialTimeout:      5 * time.Second,
			OpTimeout:        500 * time.Millisecond,
			TTL:              10 * time.Minute,
			BreakerFailures:  3,
			BreakerOpenFor:   30 * time.Second,
			BreakerHalfOpens: 1,
		},
		Weather: WeatherConfig{
			Provider:     "synthetic",
			Country:      "IN",
			BaseURL:      "https://api.openweathermap.org/data/2.5",
			Timeout:      5 * time.Second,
			RateLimitRPS: 1,
			RateBurst:    5,
			WarmSchedule: "@every 9m",
		},
		Kafka: KafkaConfig{
			Topic: "user-events",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Seed: SeedConfig{
			AdminPassword: "admin123",
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
