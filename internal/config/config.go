package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string
	}
	Store struct {
		Path string
	}
	Speech struct {
		APIKey   string
		FolderID string
		Endpoint string
		Format   string
		Voice    string
		Emotion  string
		Lang     string
		Speed    float64
	}
	Assistant struct {
		GreetingPulseMs int
		DragThresholdPx int
	}
	Tour struct {
		StartDelayMs int
	}
}

func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("store.path", "data/assistant.db")

	v.SetDefault("speech.format", "mp3")
	v.SetDefault("speech.voice", "jane")
	v.SetDefault("speech.emotion", "good")
	v.SetDefault("speech.lang", "en-US")
	v.SetDefault("speech.speed", 1.0)

	v.SetDefault("assistant.greeting_pulse_ms", 1500)
	v.SetDefault("assistant.drag_threshold_px", 5)

	v.SetDefault("tour.start_delay_ms", 500)

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("store.path", "STORE_PATH")

	v.BindEnv("speech.api_key", "SPEECH_API_KEY")
	v.BindEnv("speech.folder_id", "SPEECH_FOLDER_ID")
	v.BindEnv("speech.endpoint", "SPEECH_ENDPOINT")
	v.BindEnv("speech.format", "SPEECH_FORMAT")
	v.BindEnv("speech.voice", "SPEECH_VOICE")
	v.BindEnv("speech.emotion", "SPEECH_EMOTION")
	v.BindEnv("speech.lang", "SPEECH_LANG")
	v.BindEnv("speech.speed", "SPEECH_SPEED")

	v.BindEnv("assistant.greeting_pulse_ms", "ASSISTANT_GREETING_PULSE_MS")
	v.BindEnv("assistant.drag_threshold_px", "ASSISTANT_DRAG_THRESHOLD_PX")

	v.BindEnv("tour.start_delay_ms", "TOUR_START_DELAY_MS")

	var c Config
	c.Server.Port = v.GetString("server.port")
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Store.Path = v.GetString("store.path")

	c.Speech.APIKey = v.GetString("speech.api_key")
	c.Speech.FolderID = v.GetString("speech.folder_id")
	c.Speech.Endpoint = v.GetString("speech.endpoint")
	c.Speech.Format = v.GetString("speech.format")
	c.Speech.Voice = v.GetString("speech.voice")
	c.Speech.Emotion = v.GetString("speech.emotion")
	c.Speech.Lang = v.GetString("speech.lang")
	c.Speech.Speed = v.GetFloat64("speech.speed")

	c.Assistant.GreetingPulseMs = v.GetInt("assistant.greeting_pulse_ms")
	c.Assistant.DragThresholdPx = v.GetInt("assistant.drag_threshold_px")

	c.Tour.StartDelayMs = v.GetInt("tour.start_delay_ms")

	log.Printf("config loaded: port=%s store=%s remote_tts=%v", c.Server.Port, c.Store.Path, c.Speech.APIKey != "")
	return c
}
