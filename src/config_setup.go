package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const configFileName = ".media-restorer.yaml"

// ConfigFile represents the YAML configuration
type ConfigFile struct {
	DestDir      string `yaml:"dest_dir"`
	CopySolo     bool   `yaml:"copy_solo"`
	FFmpegPath   string `yaml:"ffmpeg_path"`
	ExifToolPath string `yaml:"exiftool_path"`
	Journal      *bool  `yaml:"journal,omitempty"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	LogFile      string `yaml:"log_file,omitempty"`
}

// defaultConfigFile returns the settings used when no file exists
func defaultConfigFile() *ConfigFile {
	journal := true
	return &ConfigFile{
		FFmpegPath:   "ffmpeg",
		ExifToolPath: "exiftool",
		Journal:      &journal,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// getConfigPath returns the path to the config file
func getConfigPath(override string) string {
	if override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, configFileName)
}

// configExists checks if config file exists
func configExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// loadConfig loads configuration from YAML file. A missing file yields
// the defaults; fields absent from the file keep their default value.
func loadConfig(path string) (*ConfigFile, error) {
	cfg := defaultConfigFile()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

// saveConfig saves configuration to YAML file
func saveConfig(path string, cfg *ConfigFile) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// applyDefaults fills fields an older or hand-edited file left empty
func (cf *ConfigFile) applyDefaults() {
	def := defaultConfigFile()
	if cf.FFmpegPath == "" {
		cf.FFmpegPath = def.FFmpegPath
	}
	if cf.ExifToolPath == "" {
		cf.ExifToolPath = def.ExifToolPath
	}
	if cf.Journal == nil {
		cf.Journal = def.Journal
	}
	if cf.LogLevel == "" {
		cf.LogLevel = def.LogLevel
	}
	if cf.LogFormat == "" {
		cf.LogFormat = def.LogFormat
	}
}

// toConfig converts the file form into the runtime Config
func (cf *ConfigFile) toConfig() *Config {
	return &Config{
		DestDir:      cf.DestDir,
		CopySolo:     cf.CopySolo,
		FFmpegPath:   cf.FFmpegPath,
		ExifToolPath: cf.ExifToolPath,
		Journal:      cf.Journal == nil || *cf.Journal,
		LogLevel:     cf.LogLevel,
		LogFormat:    cf.LogFormat,
		LogFile:      cf.LogFile,
	}
}

// validateConfig rejects settings the engine cannot run with
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.FFmpegPath) == "" {
		return errors.New("ffmpeg_path must not be empty")
	}
	if strings.TrimSpace(config.ExifToolPath) == "" {
		return errors.New("exiftool_path must not be empty")
	}
	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch strings.ToLower(config.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", config.LogFormat)
	}
	return nil
}

// runSetupWizard asks for the main settings and saves them to path
func runSetupWizard(in io.Reader, out io.Writer, path string) (*ConfigFile, error) {
	reader := bufio.NewReader(in)
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	ask := func(question, current string) string {
		fmt.Fprintf(out, "   %s [%s]: ", question, current)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return current
		}
		return answer
	}

	fmt.Fprintln(out, "╔════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(out, "║                  Media Restorer - Setup                        ║")
	fmt.Fprintln(out, "╚════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This configuration will be saved to:", path)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "1. Where should repaired files be written?")
	cfg.DestDir = ask("Destination", cfg.DestDir)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "2. Copy files that have no JSON sidecar as they are?")
	copySolo := ask("Copy solo files (y/n)", map[bool]string{true: "y", false: "n"}[cfg.CopySolo])
	cfg.CopySolo = strings.HasPrefix(strings.ToLower(copySolo), "y")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "3. Which ffmpeg binary should be used for videos?")
	cfg.FFmpegPath = ask("ffmpeg", cfg.FFmpegPath)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "4. Which exiftool binary should be used for photos?")
	cfg.ExifToolPath = ask("exiftool", cfg.ExifToolPath)

	if err := validateConfig(cfg.toConfig()); err != nil {
		return nil, err
	}

	if err := saveConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "✓ Configuration saved to:", path)
	return cfg, nil
}
