// Package config loads runtime settings from the environment. The resulting
// Config is passed into components at construction; nothing reads the
// environment after startup.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type SMTP struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
}

// Complete reports whether every setting needed to dial the mail server is
// present. Checked per send, not at startup.
func (s SMTP) Complete() bool {
	return s.Server != "" && s.Port != 0 && s.Username != "" && s.Password != "" && s.From != ""
}

type Config struct {
	HTTPPort string

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string

	JWTSecret    string
	JWTExpiresIn string

	CORSOrigins []string

	SMTP SMTP
}

func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "5005")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_DB", "gage_calibration")
	v.SetDefault("JWT_EXPIRES_IN", "1h")
	v.SetDefault("CORS_ORIGINS", "http://127.0.0.1:5005,http://localhost:5005")

	return Config{
		HTTPPort:         v.GetString("HTTP_PORT"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetString("POSTGRES_PORT"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		JWTSecret:        v.GetString("JWT_SECRET_KEY"),
		JWTExpiresIn:     v.GetString("JWT_EXPIRES_IN"),
		CORSOrigins:      splitOrigins(v.GetString("CORS_ORIGINS")),
		SMTP: SMTP{
			Server:   v.GetString("SMTP_SERVER"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("EMAIL_FROM"),
		},
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
