package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/logging"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const (
	defaultPort      = "5000"
	defaultUploadDir = "./uploads"
	defaultTimezone  = "Asia/Manila"
	defaultTokenTTL  = 24
	defaultRateLimit = 300
	defaultQueryTime = 10
)

// Config holds the project config values
type Config struct {
	URL            string
	DatabaseName   string
	BaseURL        string
	Port           string
	Env            string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	UploadDir      string
	Timezone       *time.Location
	SendGridAPIKey string
	MailFrom       string
	RateLimit      int64
	QueryTimeout   time.Duration
}

// New sets up all config related services
func New() *Config {
	// a missing .env is expected outside local development
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")

	//setup zap logger and replace default logger
	logger, err := logging.New(env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", defaultTimezone))
	if err != nil {
		zap.S().Warnw("unknown timezone, falling back to UTC", "error", err)
		loc = time.UTC
	}

	return &Config{
		URL:            os.Getenv("DB_URI"),
		DatabaseName:   os.Getenv("DB_NAME"),
		BaseURL:        os.Getenv("BASE_URL"),
		Port:           getEnv("PORT", defaultPort),
		Env:            env,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       time.Duration(getEnvInt("JWT_TTL_HOURS", defaultTokenTTL)) * time.Hour,
		AllowedOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		UploadDir:      getEnv("UPLOAD_DIR", defaultUploadDir),
		Timezone:       loc,
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@bataan.gov.ph"),
		RateLimit:      int64(getEnvInt("RATE_LIMIT_PER_MINUTE", defaultRateLimit)),
		QueryTimeout:   time.Duration(getEnvInt("DB_QUERY_TIMEOUT", defaultQueryTime)) * time.Second,
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		zap.S().With("error", err).Error(message)
	} else {
		zap.S().Warn(message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
