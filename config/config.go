package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o"
	defaultSDAPIURL      = "http://127.0.0.1:7860"
)

const (
	defaultTemperature    = 0.7
	defaultMaxTokens      = 1000
	defaultSteps          = 30
	defaultSampler        = "DPM++ 2M Karras"
	defaultCFGScale       = 7.0
	defaultWidth          = 1024
	defaultHeight         = 1024
	defaultRequestTimeout = 300 * time.Second
	defaultPromptDelay    = 1 * time.Second
	defaultImageDelay     = 2 * time.Second
)

type Config struct {
	// source directory (where category/subcategory JSON files are scanned)
	DataDirectory string

	// database path
	DatabasePath string

	// output root for generated portrait images
	OutputDirectory string

	// text-generation collaborator (OpenAI chat completions)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	Temperature   float64
	MaxTokens     int

	// image-generation collaborator (Stable Diffusion WebUI)
	SDAPIURL     string
	SDCheckpoint string
	Steps        int
	SamplerName  string
	CFGScale     float64
	Width        int
	Height       int
	Seed         int64
	RestoreFaces bool

	// processing settings
	RequestTimeout time.Duration
	PromptDelay    time.Duration
	ImageDelay     time.Duration
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvDurationOrDefault(envVar string, defaultVal time.Duration) time.Duration {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %s. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dataDir := getEnvOrDefault("DATA_DIRECTORY", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for data directory '%s': %w", dataDir, err)
	}

	outputDir := getEnvOrDefault("OUTPUT_DIRECTORY", "generated_images")
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for output directory '%s': %w", outputDir, err)
	}

	cfg := Config{
		DataDirectory:   absDataDir,
		DatabasePath:    getEnvOrDefault("DATABASE_PATH", "profiles.db"),
		OutputDirectory: absOutputDir,

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", defaultOpenAIBaseURL),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", defaultOpenAIModel),
		Temperature:   defaultTemperature,
		MaxTokens:     getEnvIntOrDefault("OPENAI_MAX_TOKENS", defaultMaxTokens),

		SDAPIURL:     getEnvOrDefault("SD_API_URL", defaultSDAPIURL),
		SDCheckpoint: os.Getenv("SD_MODEL_CHECKPOINT"),
		Steps:        getEnvIntOrDefault("SD_STEPS", defaultSteps),
		SamplerName:  getEnvOrDefault("SD_SAMPLER_NAME", defaultSampler),
		CFGScale:     defaultCFGScale,
		Width:        getEnvIntOrDefault("SD_WIDTH", defaultWidth),
		Height:       getEnvIntOrDefault("SD_HEIGHT", defaultHeight),
		Seed:         -1,
		RestoreFaces: true,

		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", defaultRequestTimeout),
		PromptDelay:    getEnvDurationOrDefault("PROMPT_DELAY", defaultPromptDelay),
		ImageDelay:     getEnvDurationOrDefault("IMAGE_DELAY", defaultImageDelay),
	}

	return cfg, nil
}

// Validate checks that the settings required before any stage may run are
// present. It collects every problem rather than stopping at the first so a
// single run reports the full fix list.
func (c Config) Validate() error {
	var errs []string

	if c.OpenAIAPIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is not set")
	}
	if c.SDCheckpoint == "" {
		errs = append(errs, "SD_MODEL_CHECKPOINT is not set")
	}
	if c.SDAPIURL == "" {
		errs = append(errs, "SD_API_URL is not set")
	}
	if _, err := os.Stat(c.DataDirectory); os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("data directory not found: %s", c.DataDirectory))
	}

	if len(errs) > 0 {
		msg := errs[0]
		for _, e := range errs[1:] {
			msg += "; " + e
		}
		return fmt.Errorf("configuration invalid: %s", msg)
	}
	return nil
}
