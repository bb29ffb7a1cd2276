// Package config loads process configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
)

// MissingKeyError marks a required configuration value that was absent.
// Fatal at startup; never retried.
type MissingKeyError struct {
	Key string
}

func (e MissingKeyError) Error() string {
	return fmt.Sprintf("required configuration %s is not set", e.Key)
}

// Config is the full configuration surface. GeminiAPIKey is the single
// required secret; everything else has a usable default.
type Config struct {
	GeminiAPIKey string `json:"gemini_api_key" jsonschema:"required,description=API key for the text generation endpoint"`
	GeminiModel  string `json:"gemini_model,omitempty" jsonschema:"description=Generation model name,default=gemini-1.5-flash"`

	DeepgramAPIKey string `json:"deepgram_api_key,omitempty" jsonschema:"description=API key for speech recognition; recognition is disabled without it"`

	BridgeURL string `json:"bridge_url,omitempty" jsonschema:"description=Audio bridge websocket endpoint; bridge playback is disabled when empty"`

	Locale          string `json:"locale,omitempty" jsonschema:"description=Preferred recognition locale,default=en-US"`
	Persona         string `json:"persona,omitempty" jsonschema:"description=Extra persona text prepended to every prompt"`
	HistoryCapacity int    `json:"history_capacity,omitempty" jsonschema:"description=Bounded conversation history size,default=12"`
}

// Load reads the environment (after best-effort .env loading) into a Config.
// A missing generation API key is a terminal configuration error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		GeminiModel:     "gemini-1.5-flash",
		Locale:          "en-US",
		HistoryCapacity: 12,
	}

	key, ok := os.LookupEnv("GEMINI_API_KEY")
	if !ok || key == "" {
		return nil, MissingKeyError{Key: "GEMINI_API_KEY"}
	}
	config.GeminiAPIKey = key

	if model, ok := os.LookupEnv("GEMINI_MODEL"); ok && model != "" {
		config.GeminiModel = model
	}
	if deepgramKey, ok := os.LookupEnv("DEEPGRAM_API_KEY"); ok {
		config.DeepgramAPIKey = deepgramKey
	}
	if bridgeURL, ok := os.LookupEnv("VAANI_BRIDGE_URL"); ok {
		config.BridgeURL = bridgeURL
	}
	if locale, ok := os.LookupEnv("VAANI_LOCALE"); ok && locale != "" {
		config.Locale = locale
	}
	if persona, ok := os.LookupEnv("VAANI_PERSONA"); ok {
		config.Persona = persona
	}
	if capacity, ok := os.LookupEnv("VAANI_HISTORY_CAPACITY"); ok && capacity != "" {
		parsed, err := strconv.Atoi(capacity)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid VAANI_HISTORY_CAPACITY %q: must be a positive integer", capacity)
		}
		config.HistoryCapacity = parsed
	}

	return config, nil
}

// Schema returns the JSON schema of the configuration surface, used by the
// -print-config-schema flag.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	return reflector.Reflect(&Config{})
}
