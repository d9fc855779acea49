package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Images   ImagesConfig   `mapstructure:"images"   validate:"required"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RequestTimeoutSeconds bounds one resolution round end to end,
	// including the fan-out to the model and the image providers.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the optional bearer-identity settings. The token is
// informational only; it never gates access to the resolution pipeline.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// LLMConfig contains all settings for the generative detail backend.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// TimeoutSeconds is the per-call deadline for one model invocation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// ImagesConfig contains the image-provider chain settings.
type ImagesConfig struct {
	// TrefleAPIKey enables the primary structured provider. When empty the
	// aggregator goes straight to the encyclopedia fallback.
	TrefleAPIKey     string `mapstructure:"trefle_api_key"`
	TrefleBaseURL    string `mapstructure:"trefle_base_url"    validate:"required,url"`
	WikipediaBaseURL string `mapstructure:"wikipedia_base_url" validate:"required,url"`
	WikidataBaseURL  string `mapstructure:"wikidata_base_url"  validate:"required,url"`

	// PerCategoryLimit caps how many URLs are taken from each primary
	// provider image category; the primary global cap is
	// PerCategoryLimit × number of categories.
	PerCategoryLimit int `mapstructure:"per_category_limit" validate:"required,gt=0"`

	// MaxImages caps the image list returned by the fallback chain and
	// stored on the species record.
	MaxImages int `mapstructure:"max_images" validate:"required,gt=0"`

	// TimeoutSeconds is the per-call deadline for one provider HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`

	// CacheTTLMinutes controls the in-process cache of aggregation results.
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
}

// WebhookConfig contains the optional post-persistence notification target.
type WebhookConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}
