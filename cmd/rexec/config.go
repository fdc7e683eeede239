package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/rexec/rscript"
)

// fileConfig is the YAML config file layout.
type fileConfig struct {
	Rscript        string            `yaml:"rscript"`
	Args           []string          `yaml:"args"`
	Dir            string            `yaml:"dir"`
	Env            map[string]string `yaml:"env"`
	TempDir        string            `yaml:"temp_dir"`
	Timeout        string            `yaml:"timeout"`
	OutputEncoding string            `yaml:"output_encoding"`
	KeepTemp       bool              `yaml:"keep_temp"`
	LogLevel       string            `yaml:"log_level"`
	MCP            mcpFileConfig     `yaml:"mcp"`
}

type mcpFileConfig struct {
	Name    string `yaml:"name"`
	Backend string `yaml:"backend"`
}

// settings is the resolved configuration after flags override the file.
type settings struct {
	runner   rscript.Config
	logLevel slog.Level
	mcpName  string
	backend  string
}

func defaultSettings() settings {
	return settings{
		logLevel: slog.LevelWarn,
		mcpName:  "rexec",
		backend:  "r",
	}
}

// loadConfig reads a YAML config file into s. Unknown keys are rejected.
func loadConfig(path string, s *settings) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw fileConfig
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return raw.apply(s)
}

func (f fileConfig) apply(s *settings) error {
	var issues []string

	s.runner.Rscript = f.Rscript
	s.runner.Args = f.Args
	s.runner.Dir = f.Dir
	s.runner.Env = f.Env
	s.runner.TempDir = f.TempDir
	s.runner.OutputEncoding = f.OutputEncoding
	s.runner.KeepTemp = f.KeepTemp

	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			issues = append(issues, fmt.Sprintf("timeout: %v", err))
		}
		s.runner.Timeout = d
	}
	if f.LogLevel != "" {
		level, err := parseLevel(f.LogLevel)
		if err != nil {
			issues = append(issues, err.Error())
		}
		s.logLevel = level
	}
	if f.MCP.Name != "" {
		s.mcpName = f.MCP.Name
	}
	if f.MCP.Backend != "" {
		s.backend = f.MCP.Backend
	}

	if len(issues) > 0 {
		return fmt.Errorf("config: %s", strings.Join(issues, "; "))
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level: unknown level %q", s)
	}
	return level, nil
}
