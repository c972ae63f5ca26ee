package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration required by the API process.
// All values come from env (an optional .env file is read first; real env wins).
// No business logic should depend on raw environment variables.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
}

type AppConfig struct {
	Env  string
	Port int

	// URL is the public base URL of this server. It is used as both the
	// issuer and the audience of every access token.
	URL string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
)

// MinSecretLength is the minimum HS256 key size in bytes.
const MinSecretLength = 32

type AuthConfig struct {
	// Secret is the raw APP_KEY value. A "base64:" prefix marks a base64 encoded key.
	Secret string
	// Issuer doubles as the expected audience.
	Issuer string

	Algorithm      string
	PrivateKeyFile string

	TTL       time.Duration
	NotBefore time.Duration

	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
}

// SigningSecret decodes Secret into the raw HMAC key bytes.
func (a AuthConfig) SigningSecret() ([]byte, error) {
	if rest, ok := strings.CutPrefix(a.Secret, "base64:"); ok {
		b, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("APP_KEY has invalid base64: %w", err)
		}
		return b, nil
	}
	return []byte(a.Secret), nil
}

// Load reads the process configuration from the environment.
// envFiles are optional dotenv files; missing files are ignored.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	c.App.URL = strings.TrimRight(strings.TrimSpace(os.Getenv("APP_URL")), "/")
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	auth, authErrs := readAuth()
	parseErrs = append(parseErrs, authErrs...)
	auth.Issuer = c.App.URL
	c.Auth = auth

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadAuth reads only APP_URL and the token settings. Tools that sign or
// inspect tokens use it so they do not need database or Redis settings.
func LoadAuth(envFiles ...string) (AuthConfig, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return AuthConfig{}, err
	}
	appURL := strings.TrimRight(strings.TrimSpace(os.Getenv("APP_URL")), "/")
	a, errs := readAuth()
	if err := joinErrors(errs); err != nil {
		return AuthConfig{}, err
	}
	a.Issuer = appURL
	errs = append(validateAppURL(appURL), a.validate(appURL)...)
	if err := joinErrors(errs); err != nil {
		return AuthConfig{}, err
	}
	return a, nil
}

// loadEnvFiles reads dotenv files (default ".env"); missing files are ignored.
func loadEnvFiles(envFiles []string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// readAuth parses the Auth group. It leaves defaults to validate.
func readAuth() (AuthConfig, []error) {
	var (
		a         AuthConfig
		parseErrs []error
		err       error
	)
	a.Secret = os.Getenv("APP_KEY")
	a.Algorithm = strings.ToUpper(strings.TrimSpace(os.Getenv("JWT_ALGORITHM")))
	a.PrivateKeyFile = strings.TrimSpace(os.Getenv("JWT_PRIVATE_KEY_FILE"))

	if a.TTL, err = optionalDuration("JWT_TTL"); err != nil {
		parseErrs = append(parseErrs, err)
	}
	if a.NotBefore, err = optionalDuration("JWT_NOT_BEFORE"); err != nil {
		parseErrs = append(parseErrs, err)
	} else if strings.TrimSpace(os.Getenv("JWT_NOT_BEFORE")) == "" {
		a.NotBefore = -1 // unset; Validate applies the default
	}
	if a.LoginAttemptWindow, err = optionalDuration("LOGIN_ATTEMPT_WINDOW"); err != nil {
		parseErrs = append(parseErrs, err)
	}
	if v := strings.TrimSpace(os.Getenv("LOGIN_MAX_ATTEMPTS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			parseErrs = append(parseErrs, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be an integer, got %q", v))
		}
		a.LoginMaxAttempts = n
	}

	return a, parseErrs
}

// Validate checks the configuration and fills in defaults for optional values.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	errs = append(errs, validateAppURL(c.App.URL)...)

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	errs = append(errs, c.Auth.validate(c.App.URL)...)

	return joinErrors(errs)
}

func (a *AuthConfig) validate(appURL string) []error {
	var errs []error

	if a.Issuer == "" {
		a.Issuer = appURL
	}
	if a.Algorithm == "" {
		a.Algorithm = AlgorithmHS256
	}
	switch a.Algorithm {
	case AlgorithmHS256:
		if a.Secret == "" {
			errs = append(errs, errors.New("APP_KEY is required"))
			break
		}
		key, err := a.SigningSecret()
		if err != nil {
			errs = append(errs, err)
		} else if len(key) < MinSecretLength {
			errs = append(errs, fmt.Errorf("APP_KEY must be at least %d bytes, got %d", MinSecretLength, len(key)))
		}
	case AlgorithmRS256:
		if a.PrivateKeyFile == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_FILE is required for RS256"))
		}
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM must be one of HS256, RS256, got %q", a.Algorithm))
	}

	if a.TTL <= 0 {
		a.TTL = time.Hour
	}
	if a.NotBefore < 0 {
		a.NotBefore = time.Minute
	}
	if a.NotBefore >= a.TTL {
		errs = append(errs, errors.New("JWT_NOT_BEFORE must be shorter than JWT_TTL"))
	}
	if a.LoginMaxAttempts <= 0 {
		a.LoginMaxAttempts = 5
	}
	if a.LoginAttemptWindow <= 0 {
		a.LoginAttemptWindow = 15 * time.Minute
	}
	return errs
}

func validateAppURL(v string) []error {
	if v == "" {
		return []error{errors.New("APP_URL is required")}
	}
	if u, err := url.Parse(v); err != nil || u.Scheme == "" || u.Host == "" {
		return []error{fmt.Errorf("APP_URL must be an absolute URL, got %q", v)}
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalDuration(key string) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
