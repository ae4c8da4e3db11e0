package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"
	ModeFill   = "fill"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultLLMBaseURL  = "https://api.groq.com/openai/v1"
	DefaultLLMModel    = "llama3-8b-8192"
	DefaultHTTPTimeout = 15 * time.Second

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the tax agent
type Config struct {
	// Server configuration
	Mode string // "stdio", "server" or "fill"
	Host string
	Port int

	// Forms configuration
	FormsDirectory string

	// One-shot fill mode inputs
	FormPath    string
	ProfilePath string
	OutputPath  string

	// Model configuration
	LLMBaseURL   string
	LLMModel     string
	GroqAPIKey   string
	SerperAPIKey string

	// OCR configuration
	TessdataPrefix string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
	HTTPTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio, // stdio default for MCP compatibility
		Host:           DefaultHost,
		Port:           DefaultPort,
		FormsDirectory: currentDir,
		LLMBaseURL:     DefaultLLMBaseURL,
		LLMModel:       DefaultLLMModel,
		Version:        "1.0.0",
		ServerName:     "taxagent",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
		HTTPTimeout:    DefaultHTTPTimeout,
	}
}

// LoadFromFlags parses command line flags, the environment and an
// optional .env file and returns a validated configuration.
func LoadFromFlags() (*Config, error) {
	// API keys commonly live in a local .env; absence is fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Keys keep their conventional names rather than the TAXAGENT prefix
	cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	cfg.SerperAPIKey = os.Getenv("SERPER_API_KEY")

	if cfg.FormsDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.FormsDirectory); err == nil {
			cfg.FormsDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("TAXAGENT")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.FormsDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("llmbaseurl", cfg.LLMBaseURL)
	viper.SetDefault("llmmodel", cfg.LLMModel)
	viper.SetDefault("tessdata", cfg.TessdataPrefix)
	viper.SetDefault("httptimeout", cfg.HTTPTimeout)
	viper.SetDefault("form", cfg.FormPath)
	viper.SetDefault("profile", cfg.ProfilePath)
	viper.SetDefault("out", cfg.OutputPath)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'stdio' for MCP standard I/O, 'server' for HTTP server, 'fill' for a one-shot local fill")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.FormsDirectory, "Directory containing form PDF files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("llmbaseurl", cfg.LLMBaseURL, "OpenAI-compatible completion endpoint")
	pflag.String("llmmodel", cfg.LLMModel, "Completion model name")
	pflag.String("tessdata", cfg.TessdataPrefix, "Tesseract tessdata directory (empty for system default)")
	pflag.Duration("httptimeout", cfg.HTTPTimeout, "Timeout for outbound HTTP requests")
	pflag.String("form", cfg.FormPath, "Form PDF to fill (fill mode)")
	pflag.String("profile", cfg.ProfilePath, "User profile text file (fill mode)")
	pflag.String("out", cfg.OutputPath, "Output path for the filled PDF (fill mode)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "loglevel", "maxfilesize",
		"llmbaseurl", "llmmodel", "tessdata", "httptimeout",
		"form", "profile", "out",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nTaxation Agent - finds, inspects and auto-fills tax form PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio MCP mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/forms                    "+
			"# stdio mode with a forms directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=fill --form=return.pdf --profile=me.txt --out=filled.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TAXAGENT_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  TAXAGENT_DIR          Forms directory\n")
		fmt.Fprintf(os.Stderr, "  TAXAGENT_LLMBASEURL   Completion endpoint\n")
		fmt.Fprintf(os.Stderr, "  TAXAGENT_LLMMODEL     Completion model\n")
		fmt.Fprintf(os.Stderr, "  GROQ_API_KEY          Completion API key\n")
		fmt.Fprintf(os.Stderr, "  SERPER_API_KEY        Web search API key\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.FormsDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.LLMBaseURL = viper.GetString("llmbaseurl")
	cfg.LLMModel = viper.GetString("llmmodel")
	cfg.TessdataPrefix = viper.GetString("tessdata")
	cfg.HTTPTimeout = viper.GetDuration("httptimeout")
	cfg.FormPath = viper.GetString("form")
	cfg.ProfilePath = viper.GetString("profile")
	cfg.OutputPath = viper.GetString("out")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStdio, ModeServer, ModeFill:
	default:
		return errors.New("mode must be one of 'stdio', 'server' or 'fill'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Mode == ModeFill {
		if c.FormPath == "" || c.ProfilePath == "" || c.OutputPath == "" {
			return errors.New("fill mode requires --form, --profile and --out")
		}
	}

	if c.FormsDirectory == "" {
		return errors.New("forms directory cannot be empty")
	}
	if _, err := os.Stat(c.FormsDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.FormsDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create forms directory %s: %w", c.FormsDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access forms directory %s: %w", c.FormsDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.LLMModel == "" {
		return errors.New("completion model cannot be empty")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, FormsDirectory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.FormsDirectory, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true when running as an HTTP server
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true when running over MCP standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsFillMode returns true when running a one-shot local fill
func (c *Config) IsFillMode() bool {
	return c.Mode == ModeFill
}
