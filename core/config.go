package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string
		WorkDir          string

		PasswordResetTimeout time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}

	ServerConfig struct {
		Host               string
		Port               int
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		AllowedOrigins     []string
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	StorageConfig struct {
		Backend  string // StorageLocal | StorageS3
		LocalDir string
		S3       S3Config
	}

	S3Config struct {
		Region    string
		Bucket    string
		Endpoint  string
		AccessKey string
		SecretKey string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables, in increasing precedence.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "ReviseHub")
	conf.SetDefault("secretKey", "w#8dp2mc5ty)a0u+s3kg^7r!qz(h4x*c9(#ej1h^$nvbf6lyo")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")
	conf.SetDefault("defaultFromEmail", "noreply@revisehub.local")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("passwordResetTimeout", 15*time.Minute)

	conf.SetDefault("server.host", "0.0.0.0")
	conf.SetDefault("server.port", 8000)
	conf.SetDefault("server.debugHost", "0.0.0.0:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	conf.SetDefault("server.allowedOrigins", []string{"http://localhost:5173"})

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "revisehub")
	conf.SetDefault("database.user", "revisehub")
	conf.SetDefault("database.password", "revisehub")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("storage.backend", StorageLocal)
	conf.SetDefault("storage.localDir", "uploads")
	conf.SetDefault("storage.s3.region", "us-east-1")
	conf.SetDefault("storage.s3.bucket", "revisehub")
	conf.SetDefault("storage.s3.endpoint", "")
	conf.SetDefault("storage.s3.accessKey", "")
	conf.SetDefault("storage.s3.secretKey", "")

	env := os.Getenv("ENV")
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	c := &Config{
		Debug:                conf.GetBool("debug"),
		TestMode:             testMode || conf.GetBool("testMode"),
		Env:                  env,
		Build:                conf.GetString("build"),
		AppName:              conf.GetString("appName"),
		SecretKey:            conf.GetString("secretKey"),
		FrontendBaseURL:      conf.GetString("frontendBaseURL"),
		DefaultFromEmail:     conf.GetString("defaultFromEmail"),
		SendgridAPIKey:       conf.GetString("sendgridApiKey"),
		RollbarToken:         conf.GetString("rollbarToken"),
		WorkDir:              wd,
		PasswordResetTimeout: conf.GetDuration("passwordResetTimeout"),
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			Port:               conf.GetInt("server.port"),
			DebugHost:          conf.GetString("server.debugHost"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
			AllowedOrigins:     conf.GetStringSlice("server.allowedOrigins"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetInt("database.port"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Storage: StorageConfig{
			Backend:  conf.GetString("storage.backend"),
			LocalDir: conf.GetString("storage.localDir"),
			S3: S3Config{
				Region:    conf.GetString("storage.s3.region"),
				Bucket:    conf.GetString("storage.s3.bucket"),
				Endpoint:  conf.GetString("storage.s3.endpoint"),
				AccessKey: conf.GetString("storage.s3.accessKey"),
				SecretKey: conf.GetString("storage.s3.secretKey"),
			},
		},
	}
	if err := c.check(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func (c *Config) check() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.AppName, "appName"),
		vala.StringNotEmpty(c.SecretKey, "secretKey"),
		vala.StringNotEmpty(c.FrontendBaseURL, "frontendBaseURL"),
		vala.StringNotEmpty(c.Database.Engine, "database.engine"),
		vala.StringNotEmpty(c.Database.Name, "database.name"),
		vala.StringNotEmpty(c.Storage.Backend, "storage.backend"),
	).Check()
}
