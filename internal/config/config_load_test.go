package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to clear environment variables
func clearEnvVars() {
	os.Unsetenv("TAXAGENT_MODE")
	os.Unsetenv("TAXAGENT_HOST")
	os.Unsetenv("TAXAGENT_PORT")
	os.Unsetenv("TAXAGENT_DIR")
	os.Unsetenv("TAXAGENT_LOGLEVEL")
	os.Unsetenv("TAXAGENT_MAXFILESIZE")
	os.Unsetenv("TAXAGENT_LLMMODEL")
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"taxagent", "--dir=" + t.TempDir()}
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeStdio {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeStdio)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "127.0.0.1")
	}
	if cfg.Port != 8080 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 100*1024*1024)
	}
	if cfg.LLMBaseURL != DefaultLLMBaseURL {
		t.Errorf("LoadFromFlags() LLMBaseURL = %v, want %v", cfg.LLMBaseURL, DefaultLLMBaseURL)
	}
	if cfg.LLMModel != DefaultLLMModel {
		t.Errorf("LoadFromFlags() LLMModel = %v, want %v", cfg.LLMModel, DefaultLLMModel)
	}
	if cfg.FormsDirectory == "" {
		t.Error("LoadFromFlags() FormsDirectory should not be empty")
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		wantMode        string
		wantHost        string
		wantPort        int
		wantLogLevel    string
		wantMaxFileSize int64
		wantLLMModel    string
	}{
		{
			name:            "stdio mode with custom directory",
			args:            []string{"taxagent", "--dir={dir}"},
			wantMode:        ModeStdio,
			wantHost:        "127.0.0.1",
			wantPort:        8080,
			wantLogLevel:    "info",
			wantMaxFileSize: 100 * 1024 * 1024,
			wantLLMModel:    DefaultLLMModel,
		},
		{
			name:            "server mode with custom host and port",
			args:            []string{"taxagent", "--mode=server", "--host=0.0.0.0", "--port=9090", "--dir={dir}"},
			wantMode:        ModeServer,
			wantHost:        "0.0.0.0",
			wantPort:        9090,
			wantLogLevel:    "info",
			wantMaxFileSize: 100 * 1024 * 1024,
			wantLLMModel:    DefaultLLMModel,
		},
		{
			name:            "debug logging",
			args:            []string{"taxagent", "--loglevel=debug", "--dir={dir}"},
			wantMode:        ModeStdio,
			wantHost:        "127.0.0.1",
			wantPort:        8080,
			wantLogLevel:    "debug",
			wantMaxFileSize: 100 * 1024 * 1024,
			wantLLMModel:    DefaultLLMModel,
		},
		{
			name:            "custom max file size and model",
			args:            []string{"taxagent", "--maxfilesize=50000000", "--llmmodel=llama3-70b-8192", "--dir={dir}"},
			wantMode:        ModeStdio,
			wantHost:        "127.0.0.1",
			wantPort:        8080,
			wantLogLevel:    "info",
			wantMaxFileSize: 50000000,
			wantLLMModel:    "llama3-70b-8192",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			tempDir := t.TempDir()
			args := make([]string, len(tt.args))
			for i, arg := range tt.args {
				args[i] = strings.ReplaceAll(arg, "{dir}", tempDir)
			}

			os.Args = args
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.Mode != tt.wantMode {
				t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, tt.wantMode)
			}
			if cfg.Host != tt.wantHost {
				t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, tt.wantHost)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, tt.wantPort)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.MaxFileSize != tt.wantMaxFileSize {
				t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, tt.wantMaxFileSize)
			}
			if cfg.LLMModel != tt.wantLLMModel {
				t.Errorf("LoadFromFlags() LLMModel = %v, want %v", cfg.LLMModel, tt.wantLLMModel)
			}
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()

	os.Setenv("TAXAGENT_MODE", "server")
	os.Setenv("TAXAGENT_HOST", "192.168.1.1")
	os.Setenv("TAXAGENT_PORT", "3000")
	os.Setenv("TAXAGENT_DIR", tempDir)
	os.Setenv("TAXAGENT_LOGLEVEL", "warn")
	os.Setenv("TAXAGENT_LLMMODEL", "mixtral-8x7b-32768")

	os.Args = []string{"taxagent"}
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeServer {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeServer)
	}
	if cfg.Host != "192.168.1.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "192.168.1.1")
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 3000)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.LLMModel != "mixtral-8x7b-32768" {
		t.Errorf("LoadFromFlags() LLMModel = %v, want %v", cfg.LLMModel, "mixtral-8x7b-32768")
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("TAXAGENT_MODE", "server")
	os.Setenv("TAXAGENT_HOST", "192.168.1.1")
	os.Setenv("TAXAGENT_PORT", "3000")

	os.Args = []string{"taxagent", "--mode=stdio", "--host=localhost", "--port=8888", "--dir=" + t.TempDir()}
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeStdio {
		t.Errorf("LoadFromFlags() Mode = %v, want %v (should override env)", cfg.Mode, ModeStdio)
	}
	if cfg.Host != "localhost" {
		t.Errorf("LoadFromFlags() Host = %v, want %v (should override env)", cfg.Host, "localhost")
	}
	if cfg.Port != 8888 {
		t.Errorf("LoadFromFlags() Port = %v, want %v (should override env)", cfg.Port, 8888)
	}
}

func TestLoadFromFlags_InvalidMode(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"taxagent", "--mode=invalid", "--dir=" + t.TempDir()}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid mode")
	}
	if err != nil && !strings.Contains(err.Error(), "mode must be one of") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid mode", err)
	}
}

func TestLoadFromFlags_FillModeRequiresPaths(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"taxagent", "--mode=fill", "--form=return.pdf", "--dir=" + t.TempDir()}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for fill mode without profile and output")
	}
	if err != nil && !strings.Contains(err.Error(), "fill mode requires") {
		t.Errorf("LoadFromFlags() error = %v, want error about fill mode inputs", err)
	}
}

func TestLoadFromFlags_InvalidLogLevel(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"taxagent", "--loglevel=invalid", "--dir=" + t.TempDir()}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid log level")
	}
	if err != nil && !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid log level", err)
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"taxagent", "--version"}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected version error")
	}
	if err != nil && err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want 'version requested'", err)
	}
}
