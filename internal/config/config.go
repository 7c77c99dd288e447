package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	SharedDriveName = "MotherDuck Shared Drive"
	FolderPath      = "GTM/Marketing DevRel/Fathom"

	defaultKeyFile          = "service_account_key.json"
	defaultContentFileName  = "fathom_docs_content.csv"
	defaultMetadataFileName = "fathom_docs_metadata.csv"
	defaultWorkers          = 1
	defaultProgressEvery    = 5
	defaultPreviewRows      = 10

	envConfigFile = "GDOCEXPORT_CONFIG"
)

type DriveConfig struct {
	KeyFile         string `yaml:"key_file"`
	SharedDriveName string `yaml:"shared_drive"`
	SharedDriveOnly bool   `yaml:"shared_drive_only"`
	FolderPath      string `yaml:"folder_path"`
	StrictMatch     bool   `yaml:"strict_match"`
}

// TargetFolder is the last element of FolderPath.
func (c *DriveConfig) TargetFolder() string {
	parts := splitPath(c.FolderPath)
	if len(parts) == 0 {
		return ""
	}

	return parts[len(parts)-1]
}

// ParentFolder is the element of FolderPath right above the target, or "".
func (c *DriveConfig) ParentFolder() string {
	parts := splitPath(c.FolderPath)
	if len(parts) < 2 {
		return ""
	}

	return parts[len(parts)-2]
}

type ExportConfig struct {
	OutputDir        string `yaml:"output_dir"`
	ContentFileName  string `yaml:"content_filename"`
	MetadataFileName string `yaml:"metadata_filename"`
	ReportFileName   string `yaml:"report_filename"`
	Workers          int    `yaml:"workers"`
	ProgressEvery    int    `yaml:"progress_every"`
	PreviewRows      int    `yaml:"preview_rows"`
	LegacyColumns    bool   `yaml:"legacy_columns"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type Config struct {
	ProjectID    string       `yaml:"project_id"`
	BucketName   string       `yaml:"bucket_name"`
	LogLevel     string       `yaml:"log_level"`
	DriveConfig  DriveConfig  `yaml:"drive"`
	ExportConfig ExportConfig `yaml:"export"`
	RedisConfig  RedisConfig  `yaml:"redis"`
}

func (c *Config) SetDefaults() {
	c.LogLevel = LogLevelInfo

	c.DriveConfig.KeyFile = defaultKeyFile
	c.DriveConfig.SharedDriveName = SharedDriveName
	c.DriveConfig.FolderPath = FolderPath

	c.ExportConfig.ContentFileName = defaultContentFileName
	c.ExportConfig.MetadataFileName = defaultMetadataFileName
	c.ExportConfig.Workers = defaultWorkers
	c.ExportConfig.ProgressEvery = defaultProgressEvery
	c.ExportConfig.PreviewRows = defaultPreviewRows
}

// Load builds the configuration once at startup: defaults, then an optional
// YAML file named by GDOCEXPORT_CONFIG, then environment variables. A .env
// file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	return LoadWithFS(afero.NewOsFs())
}

func LoadWithFS(fs afero.Fs) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.SetDefaults()

	if fileName := os.Getenv(envConfigFile); fileName != "" {
		data, err := afero.ReadFile(fs, fileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", fileName, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", fileName, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.ProjectID, "PROJECT_ID")
	setString(&c.BucketName, "BUCKET_NAME")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DriveConfig.KeyFile, "KEY_FILE")
	setString(&c.ExportConfig.OutputDir, "OUTPUT_DIR")
	setString(&c.ExportConfig.ReportFileName, "REPORT_FILE")
	setString(&c.RedisConfig.URL, "REDIS_URL")

	if err := setBool(&c.DriveConfig.StrictMatch, "STRICT_MATCH"); err != nil {
		return err
	}

	if err := setBool(&c.DriveConfig.SharedDriveOnly, "SHARED_DRIVE_ONLY"); err != nil {
		return err
	}

	if err := setBool(&c.ExportConfig.LegacyColumns, "LEGACY_COLUMNS"); err != nil {
		return err
	}

	if v := os.Getenv("EXPORT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EXPORT_WORKERS %q: %w", v, err)
		}
		c.ExportConfig.Workers = n
	}

	return nil
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}

	if c.DriveConfig.TargetFolder() == "" {
		return fmt.Errorf("folder path must not be empty")
	}

	if c.ExportConfig.ContentFileName == "" || c.ExportConfig.MetadataFileName == "" {
		return fmt.Errorf("output file names must not be empty")
	}

	if c.ExportConfig.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.ExportConfig.Workers)
	}

	if c.ExportConfig.ProgressEvery < 1 {
		c.ExportConfig.ProgressEvery = defaultProgressEvery
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b

	return nil
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return parts
}
