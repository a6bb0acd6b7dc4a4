package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("queue.driver", "QUEUE_DRIVER", "APP_QUEUE_DRIVER")
	viper.BindEnv("queue.nats.url", "NATS_URL", "APP_NATS_URL")
	viper.BindEnv("queue.rabbitmq.url", "RABBITMQ_URL", "APP_RABBITMQ_URL")
	viper.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	viper.BindEnv("voice.asr_url", "ASR_URL", "APP_VOICE_ASR_URL")
	viper.BindEnv("voice.nlu_url", "NLU_URL", "APP_VOICE_NLU_URL")
	viper.BindEnv("voice.tts_url", "TTS_URL", "APP_VOICE_TTS_URL")
	viper.BindEnv("voice.audio_dir", "AUDIO_DIR", "APP_VOICE_AUDIO_DIR")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "voxmart")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.read_timeout", 15*time.Second)
	viper.SetDefault("http.write_timeout", 30*time.Second)
	viper.SetDefault("http.idle_timeout", time.Minute)
	viper.SetDefault("http.body_limit", 10*1024*1024)
	viper.SetDefault("queue.driver", "nats")
	viper.SetDefault("voice.speaker_id", "p225")
	viper.SetDefault("voice.audio_dir", "./data/audio")
	viper.SetDefault("voice.locale", "en-US")
	viper.SetDefault("voice.backend_timeout", 30*time.Second)
	viper.SetDefault("voice.restart_delay", 100*time.Millisecond)
	viper.SetDefault("voice.reinit_backoff", 750*time.Millisecond)
	viper.SetDefault("voice.transient_grace", 2*time.Second)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
