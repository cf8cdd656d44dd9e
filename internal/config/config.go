package config

import (
	"strings"
	"time"

	"frameworks/pkg/config"
)

// Config stores environment configuration for Bosun.
type Config struct {
	Port             string
	DatabaseURL      string
	Timezone         string
	CollectionHour   int
	SummaryHour      int
	SendDelay        time.Duration
	SlackBotToken    string
	SlackAPIURL      string
	LLMProvider      string
	LLMModel         string
	LLMAPIKey        string
	LLMAPIURL        string
	LLMMaxTokens     int
	SynthesisTimeout time.Duration
	KafkaBrokers     []string
	CycleEventsTopic string
}

// LoadConfig loads the Bosun configuration from environment variables.
func LoadConfig() Config {
	brokersEnv := strings.TrimSpace(config.GetEnv("KAFKA_BROKERS", ""))
	var brokers []string
	if brokersEnv != "" {
		for _, broker := range strings.Split(brokersEnv, ",") {
			broker = strings.TrimSpace(broker)
			if broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}
	return Config{
		Port:             config.GetEnv("PORT", "18021"),
		DatabaseURL:      config.RequireEnv("DATABASE_URL"),
		Timezone:         config.GetEnv("BOSUN_TIMEZONE", "America/New_York"),
		CollectionHour:   config.GetEnvInt("BOSUN_COLLECTION_HOUR", 12),
		SummaryHour:      config.GetEnvInt("BOSUN_SUMMARY_HOUR", 10),
		SendDelay:        time.Duration(config.GetEnvInt("BOSUN_SEND_DELAY_MS", 1000)) * time.Millisecond,
		SlackBotToken:    config.RequireEnv("SLACK_BOT_TOKEN"),
		SlackAPIURL:      config.GetEnv("SLACK_API_URL", ""),
		LLMProvider:      config.GetEnv("LLM_PROVIDER", ""),
		LLMModel:         config.GetEnv("LLM_MODEL", ""),
		LLMAPIKey:        config.GetEnv("LLM_API_KEY", ""),
		LLMAPIURL:        config.GetEnv("LLM_API_URL", ""),
		LLMMaxTokens:     config.GetEnvInt("LLM_MAX_TOKENS", 1024),
		SynthesisTimeout: time.Duration(config.GetEnvInt("BOSUN_SYNTHESIS_TIMEOUT_SECONDS", 60)) * time.Second,
		KafkaBrokers:     brokers,
		CycleEventsTopic: config.GetEnv("BOSUN_CYCLE_EVENTS_TOPIC", "bosun.cycle_events"),
	}
}
