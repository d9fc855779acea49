package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable the loader reads,
// e.g. FLORA_SERVER_PORT or FLORA_LLM_GEMINI_API_KEY.
const envPrefix = "FLORA"

// Load reads configuration from environment variables, applies defaults, and
// validates the result. Environment variables take precedence over defaults.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// key must be registered through a default or an explicit binding.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"llm.gemini_api_key",
		"images.trefle_api_key",
		"webhook.url",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment key %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults for every optional setting. Values without
// a default here are required and must come from the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout_seconds", 60)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.timeout_seconds", 30)

	v.SetDefault("images.trefle_base_url", "https://trefle.io")
	v.SetDefault("images.wikipedia_base_url", "https://fr.wikipedia.org/w/api.php")
	v.SetDefault("images.wikidata_base_url", "https://www.wikidata.org/w/api.php")
	v.SetDefault("images.per_category_limit", 2)
	v.SetDefault("images.max_images", 5)
	v.SetDefault("images.timeout_seconds", 10)
	v.SetDefault("images.cache_ttl_minutes", 30)

	v.SetDefault("webhook.timeout_seconds", 5)
}
