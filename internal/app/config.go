package app

import (
	"os"
	"strconv"
	"strings"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	HTTPAddr string

	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifeMins int

	GradeScale string

	TeacherPasswordHash string
	TeacherPassword     string
	JWTSecret           string
	TokenTTLMinutes     int

	AuthRateLimitPerMin   int
	SubmitRateLimitPerMin int
	CORSAllowedOrigins    []string
}

func LoadConfig() Config {
	origins := []string{"*"}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		AppEnv:   envOrDefault("APP_ENV", "development"),
		HTTPAddr: envOrDefault("HTTP_ADDR", ":8080"),

		DBDriver:          envOrDefault("DB_DRIVER", "sqlite"),
		DBDSN:             os.Getenv("DB_DSN"),
		DBMaxOpenConns:    intOrDefault("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    intOrDefault("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifeMins: intOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30),

		GradeScale: envOrDefault("GRADE_SCALE", "numeric"),

		TeacherPasswordHash: os.Getenv("TEACHER_PASSWORD_HASH"),
		TeacherPassword:     os.Getenv("TEACHER_PASSWORD"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTLMinutes:     intOrDefault("TOKEN_TTL_MINUTES", 720),

		AuthRateLimitPerMin:   intOrDefault("AUTH_RATE_LIMIT_PER_MINUTE", 60),
		SubmitRateLimitPerMin: intOrDefault("SUBMIT_RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins:    origins,
	}
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsToInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func intOrDefault(key string, fallback int) int {
	v := stringsToInt(os.Getenv(key))
	if v <= 0 {
		return fallback
	}
	return v
}
