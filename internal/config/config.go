// Copyright 2025 Alan Matykiewicz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the
// Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alan-mat/responseflow/internal/provider"
)

const (
	DefaultListenPort = 3000
	DefaultLogLevel   = "info"
)

var (
	ErrInvalidLogLevel = errors.New("invalid log level")
)

type ServerConfig struct {
	ListenHost string `yaml:"listen_host"`
	ListenPort int    `yaml:"listen_port"`
}

type ProviderConfig struct {
	Kind    string `yaml:"kind"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	// APIKey is never read from the file, see ApplyEnv.
	APIKey string `yaml:"-"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Log      LogConfig      `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenPort: DefaultListenPort,
		},
		Provider: ProviderConfig{
			Kind:    string(provider.LMProviderKindOpenAI),
			BaseURL: provider.DefaultOpenAIBaseURL,
			Model:   provider.DefaultOpenAIModel,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ReadConfig reads a YAML config file on top of the defaults. An empty
// path returns the defaults.
func ReadConfig(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(file, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}

	if conf.Server.ListenPort == 0 {
		conf.Server.ListenPort = DefaultListenPort
	}
	if conf.Log.Level == "" {
		conf.Log.Level = DefaultLogLevel
	}
	if conf.Provider.Kind == "" {
		conf.Provider.Kind = string(provider.LMProviderKindOpenAI)
	}
	// gemini keeps an explicit base_url, only the inherited OpenAI default is dropped
	if conf.Provider.Kind == string(provider.LMProviderKindGemini) && conf.Provider.BaseURL == provider.DefaultOpenAIBaseURL {
		conf.Provider.BaseURL = ""
	}
	if conf.Provider.Kind == string(provider.LMProviderKindGemini) && conf.Provider.Model == provider.DefaultOpenAIModel {
		conf.Provider.Model = provider.DefaultGeminiModel
	}

	return conf, nil
}

// ApplyEnv fills secrets from the environment. Each provider kind reads
// its own key variable.
func (c *Config) ApplyEnv() {
	switch provider.LMProviderKind(c.Provider.Kind) {
	case provider.LMProviderKindGemini:
		c.Provider.APIKey = os.Getenv("GEMINI_API_KEY")
	default:
		c.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Kind:    provider.LMProviderKind(c.Provider.Kind),
		BaseURL: c.Provider.BaseURL,
		APIKey:  c.Provider.APIKey,
		Model:   c.Provider.Model,
	}
}

func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: '%s'", ErrInvalidLogLevel, c.Log.Level)
	}
}
