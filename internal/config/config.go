package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env              string
	HTTPPort         string
	RedisAddr        string
	QueueBackend     string
	QueueKey         string
	MembersFile      string
	GuestFiles       []string
	MeetingName      string
	InsightAPIURL    string
	InsightAPIKey    string
	InsightModel     string
	RateLimitPerMin  int
	BroadcastTimeout time.Duration
}

// Load returns application config populated from the environment (an
// optional .env file first) with sensible defaults.
func Load() App {
	_ = godotenv.Load()
	return App{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		QueueBackend:     getEnv("QUEUE_BACKEND", "memory"),
		QueueKey:         getEnv("QUEUE_KEY", "checkin:changes"),
		MembersFile:      getEnv("MEMBERS_FILE", "data/members.csv"),
		GuestFiles:       listEnv("GUEST_FILES"),
		MeetingName:      getEnv("MEETING_NAME", "Chapter Meeting"),
		InsightAPIURL:    getEnv("INSIGHT_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		InsightAPIKey:    getEnv("INSIGHT_API_KEY", ""),
		InsightModel:     getEnv("INSIGHT_MODEL", "deepseek-chat"),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 240),
		BroadcastTimeout: durationEnv("BROADCAST_TIMEOUT", 2*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func listEnv(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
