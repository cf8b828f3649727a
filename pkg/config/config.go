package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	AppEnv      string
	BaseURL     string

	// TTL store
	TTLBackend    string // redis, etcd or memory
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	EtcdEndpoints []string

	// Video limits
	MaxFileSize          int64   // bytes
	MinDuration          float64 // seconds
	MaxDuration          float64 // seconds
	LimitDerivedDuration bool
	ShareLinkTTL         time.Duration

	// Media tool and storage
	FFmpegPath  string
	FFprobePath string
	UploadDir   string
	OutputDir   string

	// Credentials
	JWTSecret          string
	JWTAlgorithm       string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string
	AllowedEmails      []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	p := &parser{}
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:      getEnv("APP_ENV", "local"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),

		TTLBackend:    strings.ToLower(getEnv("TTL_BACKEND", "redis")),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       p.int("REDIS_DB", 0),
		EtcdEndpoints: splitList(getEnv("ETCD_ENDPOINTS", "localhost:2379")),

		MaxFileSize:          p.int64("MAX_VIDEO_FILE_SIZE", 25<<20),
		MinDuration:          p.float("MIN_VIDEO_DURATION", 5),
		MaxDuration:          p.float("MAX_VIDEO_DURATION", 25),
		LimitDerivedDuration: p.bool("LIMIT_DERIVED_DURATION", true),
		ShareLinkTTL:         time.Duration(p.int64("SHARE_LINK_TTL", 3600)) * time.Second,

		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		UploadDir:   getEnv("UPLOAD_DIR", "assets/videos"),
		OutputDir:   getEnv("OUTPUT_DIR", "assets/videos"),

		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		JWTAlgorithm:       getEnv("JWT_ALGORITHM", "HS256"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:8080"),
		AllowedEmails:      splitList(getEnv("ALLOWED_EMAILS", "")),

		ReadTimeout:  p.duration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: p.duration("WRITE_TIMEOUT", 5*time.Minute),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.MinDuration < 0 || cfg.MaxDuration < cfg.MinDuration {
		return nil, fmt.Errorf("config: MIN_VIDEO_DURATION/MAX_VIDEO_DURATION out of order (%g, %g)", cfg.MinDuration, cfg.MaxDuration)
	}
	if cfg.ShareLinkTTL <= 0 {
		return nil, fmt.Errorf("config: SHARE_LINK_TTL must be positive")
	}
	switch cfg.TTLBackend {
	case "redis", "etcd", "memory":
	default:
		return nil, fmt.Errorf("config: unknown TTL_BACKEND %q", cfg.TTLBackend)
	}
	return cfg, nil
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser keeps the first conversion error so Load can report it once
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
}

func (p *parser) int(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) int64(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) bool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}
