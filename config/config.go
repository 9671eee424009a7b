package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultDatasetURL is the zip archive holding the scraped SF listings.
const DefaultDatasetURL = "https://github.com/kylehounslow/datasets/raw/master/mlbootcamp/sf_housing.zip"

// Config holds all application configuration loaded from environment variables
// and, optionally, a YAML file layered on top.
type Config struct {
	DataDir        string `yaml:"data_dir" validate:"required"`
	DatasetURL     string `yaml:"dataset_url" validate:"required,url"`
	ArchiveName    string `yaml:"archive_name" validate:"required"`
	MergedFileName string `yaml:"merged_file_name" validate:"required"`
	SourceExt      string `yaml:"source_ext" validate:"required,startswith=."`

	DownloadTimeoutSec int  `yaml:"download_timeout_sec" validate:"gte=0"`
	MaxRetries         int  `yaml:"max_retries" validate:"gte=1"`
	KeepStaging        bool `yaml:"keep_staging"`
	Debug              bool `yaml:"debug"`

	CSVOutputPath     string `yaml:"csv_output_path"`
	ParquetOutputPath string `yaml:"parquet_output_path"`
	XLSXOutputPath    string `yaml:"xlsx_output_path"`
	DuckDBPath        string `yaml:"duckdb_path"`

	PostgresEnabled  bool   `yaml:"postgres_enabled"`
	PostgresHost     string `yaml:"postgres_host" validate:"required_if=PostgresEnabled true"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDB       string `yaml:"postgres_db" validate:"required_if=PostgresEnabled true"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataDir:        getEnv("DATA_DIR", "./tmp"),
		DatasetURL:     getEnv("DATASET_URL", DefaultDatasetURL),
		ArchiveName:    getEnv("ARCHIVE_NAME", "data.zip"),
		MergedFileName: getEnv("MERGED_FILE_NAME", "all_data.csv"),
		SourceExt:      getEnv("SOURCE_EXT", ".csv"),

		DownloadTimeoutSec: getEnvInt("DOWNLOAD_TIMEOUT_SEC", 0),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),
		KeepStaging:        getEnvBool("KEEP_STAGING", false),
		Debug:              getEnvBool("LOG_DEBUG", false),

		CSVOutputPath:     getEnv("CSV_OUTPUT_PATH", ""),
		ParquetOutputPath: getEnv("PARQUET_OUTPUT_PATH", ""),
		XLSXOutputPath:    getEnv("XLSX_OUTPUT_PATH", ""),
		DuckDBPath:        getEnv("DUCKDB_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "housing"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "housing123"),
		PostgresDB:       getEnv("POSTGRES_DB", "housing_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Redacted returns a copy of c that is safe to log.
func (c *Config) Redacted() Config {
	r := *c
	if r.PostgresPassword != "" {
		r.PostgresPassword = "****"
	}
	return r
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}
