package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the marking service
type Config struct {
	Store      StoreConfig
	Documents  DocumentsConfig
	Similarity SimilarityConfig
	API        APIConfig
	Log        LogConfig
}

// StoreConfig holds record table configuration
type StoreConfig struct {
	TablePath      string
	AssignmentsDir string
}

// DocumentsConfig controls which files are accepted as query and reference documents
type DocumentsConfig struct {
	QueryExtensions     []string
	ReferenceExtensions []string
}

// SimilarityConfig holds tokenizer settings for the TF-IDF vectorizer
type SimilarityConfig struct {
	MinTokenLength int
	Lowercase      bool
}

type APIConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Store: StoreConfig{
			TablePath:      GetStringEnv("MARKS_TABLE_PATH", "student_data.csv"),
			AssignmentsDir: GetStringEnv("MARKS_ASSIGNMENTS_DIR", "assignments"),
		},
		Documents: DocumentsConfig{
			QueryExtensions:     GetExtensionsEnv("MARKS_QUERY_EXTENSIONS", []string{".txt"}),
			ReferenceExtensions: GetExtensionsEnv("MARKS_REFERENCE_EXTENSIONS", []string{".txt"}),
		},
		Similarity: SimilarityConfig{
			MinTokenLength: GetIntEnv("SIMILARITY_MIN_TOKEN_LENGTH", 2),
			Lowercase:      GetBoolEnv("SIMILARITY_LOWERCASE", true),
		},
		API: APIConfig{
			Addr:            GetStringEnv("API_ADDR", ":8080"),
			ReadTimeout:     GetDurationEnv("API_READ_TIMEOUT", 10*time.Second),
			ShutdownTimeout: GetDurationEnv("API_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level:  GetStringEnv("LOG_LEVEL", "info"),
			Format: GetStringEnv("LOG_FORMAT", "text"),
		},
	}
}

// Validate reports settings the rest of the system cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.TablePath) == "" {
		return errors.New("config: table path is empty")
	}
	if c.Similarity.MinTokenLength < 1 {
		return errors.New("config: minimum token length must be positive")
	}
	if len(c.Documents.ReferenceExtensions) == 0 {
		return errors.New("config: no reference extensions configured")
	}
	return nil
}

// envOr parses the variable key with parse. Unset, empty and unparsable
// values all fall back to def.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func GetStringEnv(key, defaultValue string) string {
	return envOr(key, defaultValue, func(raw string) (string, error) { return raw, nil })
}

func GetIntEnv(key string, defaultValue int) int {
	return envOr(key, defaultValue, strconv.Atoi)
}

// GetBoolEnv accepts the forms strconv.ParseBool does (1, t, true, 0, f, false...)
func GetBoolEnv(key string, defaultValue bool) bool {
	return envOr(key, defaultValue, strconv.ParseBool)
}

// GetDurationEnv reads Go duration syntax such as "15s" or "1m30s"
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	return envOr(key, defaultValue, time.ParseDuration)
}

// GetExtensionsEnv reads a comma separated list of file extensions,
// normalised to lower case with a leading dot.
func GetExtensionsEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if !strings.HasPrefix(item, ".") {
			item = "." + item
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
