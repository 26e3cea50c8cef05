// Package config assembles the service configuration from, in increasing
// priority, built-in defaults, an optional JSON file, environment variables
// (with .env support) and command-line flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/thoas/go-funk"
)

// Config holds every tunable of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	GRPCAddr            string        `env:"GRPC_SERVER_ADDRESS" validate:"omitempty,hostname_port"`
	APIPrefix           string        `env:"API_PREFIX" validate:"startswith=/"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"gt=0"`

	// JWTSecret signs the session tokens. The default is only good for local runs.
	JWTSecret  string        `env:"JWT_SECRET" validate:"required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" validate:"gt=0"`
	BcryptCost int           `env:"BCRYPT_COST" validate:"min=10,max=31"`

	TMDBAPIKey      string        `env:"TMDB_API_KEY"`
	TMDBBaseURL     string        `env:"TMDB_BASE_URL" validate:"url"`
	TMDBLanguage    string        `env:"TMDB_LANGUAGE" validate:"required"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" validate:"gt=0"`

	// TrustedSubnet limits GET /metrics to this CIDR; empty leaves it open.
	TrustedSubnet string `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
}

// jsonConfig mirrors Config for the JSON file, where durations are written
// as strings like "10s".
type jsonConfig struct {
	RunAddr             string `json:"server_address"`
	GRPCAddr            string `json:"grpc_server_address"`
	APIPrefix           string `json:"api_prefix"`
	LogLevel            string `json:"log_level"`
	DBFileName          string `json:"file_storage_path"`
	DatabaseDSN         string `json:"database_dsn"`
	DBConnectionTimeout string `json:"db_connection_timeout"`
	JWTSecret           string `json:"jwt_secret"`
	TokenTTL            string `json:"token_ttl"`
	BcryptCost          int    `json:"bcrypt_cost"`
	TMDBAPIKey          string `json:"tmdb_api_key"`
	TMDBBaseURL         string `json:"tmdb_base_url"`
	TMDBLanguage        string `json:"tmdb_language"`
	UpstreamTimeout     string `json:"upstream_timeout"`
	TrustedSubnet       string `json:"trusted_subnet"`
}

var defaultConfig = Config{
	RunAddr:             ":3000",
	GRPCAddr:            "",
	APIPrefix:           "/api",
	LogLevel:            "info",
	DBFileName:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	JWTSecret:           "change_me",
	TokenTTL:            7 * 24 * time.Hour,
	BcryptCost:          10,
	TMDBAPIKey:          "",
	TMDBBaseURL:         "https://api.themoviedb.org/3",
	TMDBLanguage:        "en-US",
	UpstreamTimeout:     10 * time.Second,
	TrustedSubnet:       "",
}

var allowedLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	return funk.ContainsString(allowedLogLevels, fieldLevel.Field().String())
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips the command line, e.g. in tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configPath := os.Getenv("CONFIG")
	var flags *flagValues
	if !options.disableFlagsParsing {
		flags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
		if flags.configPath != "" {
			configPath = flags.configPath
		}
	}

	if configPath != "" {
		err = values.loadJSON(configPath)
		if err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}
	applyDefaults(&valuesFromEnv, *values)
	values = &valuesFromEnv

	if flags != nil {
		flags.apply(values)
	}

	err = values.validate()
	if err != nil {
		return nil, err
	}

	return values, nil
}

// applyDefaults fills every zero field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.GRPCAddr == "" {
		values.GRPCAddr = defaults.GRPCAddr
	}
	if values.APIPrefix == "" {
		values.APIPrefix = defaults.APIPrefix
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.DBFileName == "" {
		values.DBFileName = defaults.DBFileName
	}
	if values.DatabaseDSN == "" {
		values.DatabaseDSN = defaults.DatabaseDSN
	}
	if values.DBConnectionTimeout == 0 {
		values.DBConnectionTimeout = defaults.DBConnectionTimeout
	}
	if values.JWTSecret == "" {
		values.JWTSecret = defaults.JWTSecret
	}
	if values.TokenTTL == 0 {
		values.TokenTTL = defaults.TokenTTL
	}
	if values.BcryptCost == 0 {
		values.BcryptCost = defaults.BcryptCost
	}
	if values.TMDBAPIKey == "" {
		values.TMDBAPIKey = defaults.TMDBAPIKey
	}
	if values.TMDBBaseURL == "" {
		values.TMDBBaseURL = defaults.TMDBBaseURL
	}
	if values.TMDBLanguage == "" {
		values.TMDBLanguage = defaults.TMDBLanguage
	}
	if values.UpstreamTimeout == 0 {
		values.UpstreamTimeout = defaults.UpstreamTimeout
	}
	if values.TrustedSubnet == "" {
		values.TrustedSubnet = defaults.TrustedSubnet
	}
}

func (c *Config) loadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromJSON jsonConfig
	err = json.Unmarshal(data, &fromJSON)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `json.Unmarshal()` calling: %w", err)
	}

	parsed := Config{
		RunAddr:       fromJSON.RunAddr,
		GRPCAddr:      fromJSON.GRPCAddr,
		APIPrefix:     fromJSON.APIPrefix,
		LogLevel:      fromJSON.LogLevel,
		DBFileName:    fromJSON.DBFileName,
		DatabaseDSN:   fromJSON.DatabaseDSN,
		JWTSecret:     fromJSON.JWTSecret,
		BcryptCost:    fromJSON.BcryptCost,
		TMDBAPIKey:    fromJSON.TMDBAPIKey,
		TMDBBaseURL:   fromJSON.TMDBBaseURL,
		TMDBLanguage:  fromJSON.TMDBLanguage,
		TrustedSubnet: fromJSON.TrustedSubnet,
	}

	durations := []struct {
		name   string
		raw    string
		target *time.Duration
	}{
		{"db_connection_timeout", fromJSON.DBConnectionTimeout, &parsed.DBConnectionTimeout},
		{"token_ttl", fromJSON.TokenTTL, &parsed.TokenTTL},
		{"upstream_timeout", fromJSON.UpstreamTimeout, &parsed.UpstreamTimeout},
	}
	for _, duration := range durations {
		if duration.raw == "" {
			continue
		}
		*duration.target, err = time.ParseDuration(duration.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", duration.name, path, err)
		}
	}

	applyDefaults(&parsed, *c)
	*c = parsed

	return nil
}

type flagValues struct {
	set        map[string]bool
	configPath string
	values     Config
}

func parseFlags(args []string) (*flagValues, error) {
	result := &flagValues{set: map[string]bool{}}

	flagSet := flag.NewFlagSet("arrowflix", flag.ContinueOnError)
	flagSet.StringVar(&result.configPath, "c", "", "path to the JSON config file")
	flagSet.StringVar(&result.values.RunAddr, "a", "", "address and port to run the HTTP server")
	flagSet.StringVar(&result.values.GRPCAddr, "g", "", "address and port to run the gRPC health server")
	flagSet.StringVar(&result.values.LogLevel, "l", "", "logger level")
	flagSet.StringVar(&result.values.DBFileName, "f", "", "JSON file name with database")
	flagSet.StringVar(&result.values.DatabaseDSN, "d", "", "A string with the database connection details")
	flagSet.StringVar(&result.values.JWTSecret, "s", "", "secret used to sign session tokens")
	flagSet.StringVar(&result.values.TrustedSubnet, "t", "", "CIDR allowed to read /metrics")

	err := flagSet.Parse(args)
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/parseFlags(): error while `flagSet.Parse()` calling: %w", err)
	}

	flagSet.Visit(func(f *flag.Flag) {
		result.set[f.Name] = true
	})

	return result, nil
}

// apply overrides values with the flags given explicitly on the command line.
func (f *flagValues) apply(values *Config) {
	if f.set["a"] {
		values.RunAddr = f.values.RunAddr
	}
	if f.set["g"] {
		values.GRPCAddr = f.values.GRPCAddr
	}
	if f.set["l"] {
		values.LogLevel = f.values.LogLevel
	}
	if f.set["f"] {
		values.DBFileName = f.values.DBFileName
	}
	if f.set["d"] {
		values.DatabaseDSN = f.values.DatabaseDSN
	}
	if f.set["s"] {
		values.JWTSecret = f.values.JWTSecret
	}
	if f.set["t"] {
		values.TrustedSubnet = f.values.TrustedSubnet
	}
}
