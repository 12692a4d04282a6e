package common

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/logger"
)

// CommonFlags contains flags that are shared across commands
type CommonFlags struct {
	// Environment and configuration
	EnvFile    *string
	ConfigFile *string

	// Logging
	Verbose   *bool
	LogFormat *string

	// Help and version
	Version *bool
	Help    *bool
}

// RegisterCommonFlags registers common flags on fs.
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		EnvFile:    fs.String("env", ".env", "Environment file path"),
		ConfigFile: fs.String("config", "", "Configuration file (yaml, json or toml)"),

		Verbose:   fs.Bool("verbose", false, "Enable debug logging"),
		LogFormat: fs.String("log-format", "", "Log format: console or json (overrides config)"),

		Version: fs.Bool("version", false, "Show version information"),
		Help:    fs.Bool("help", false, "Show help information"),
	}
}

// FlagValidator provides flag validation utilities
type FlagValidator struct {
	errors []string
}

// NewFlagValidator creates a new flag validator
func NewFlagValidator() *FlagValidator {
	return &FlagValidator{
		errors: make([]string, 0),
	}
}

// ValidateInt validates an int flag value; zero means unset and is skipped.
func (v *FlagValidator) ValidateInt(name string, value int, min, max int) *FlagValidator {
	if value != 0 && (value < min || value > max) {
		v.errors = append(v.errors, fmt.Sprintf("-%s must be between %d and %d, got %d", name, min, max, value))
	}
	return v
}

// ValidateChoice validates that value is one of choices; empty is skipped.
func (v *FlagValidator) ValidateChoice(name, value string, choices []string) *FlagValidator {
	if value == "" {
		return v
	}
	for _, c := range choices {
		if value == c {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("-%s must be one of [%s], got %q", name, strings.Join(choices, ", "), value))
	return v
}

// ValidateFile checks that path exists when given or required.
func (v *FlagValidator) ValidateFile(name, path string, required bool) *FlagValidator {
	if path == "" {
		if required {
			v.errors = append(v.errors, fmt.Sprintf("-%s is required", name))
		}
		return v
	}
	if _, err := os.Stat(path); err != nil {
		v.errors = append(v.errors, fmt.Sprintf("-%s: file not found: %s", name, path))
	}
	return v
}

// AddError adds a custom validation error
func (v *FlagValidator) AddError(message string) *FlagValidator {
	v.errors = append(v.errors, message)
	return v
}

// HasErrors returns true if there are validation errors
func (v *FlagValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// GetError returns a formatted error message with all validation errors
func (v *FlagValidator) GetError() error {
	if len(v.errors) == 0 {
		return nil
	}

	if len(v.errors) == 1 {
		return fmt.Errorf("validation error: %s", v.errors[0])
	}

	return fmt.Errorf("validation errors:\n  - %s", strings.Join(v.errors, "\n  - "))
}

// UsageFormatter provides utilities for formatting flag usage
type UsageFormatter struct {
	AppName        string
	AppDescription string
	Examples       []UsageExample
}

// UsageExample represents a usage example
type UsageExample struct {
	Command     string
	Description string
}

// NewUsageFormatter creates a new usage formatter
func NewUsageFormatter(appName, description string) *UsageFormatter {
	return &UsageFormatter{
		AppName:        appName,
		AppDescription: description,
		Examples:       make([]UsageExample, 0),
	}
}

// AddExample adds a usage example
func (u *UsageFormatter) AddExample(command, description string) *UsageFormatter {
	u.Examples = append(u.Examples, UsageExample{
		Command:     command,
		Description: description,
	})
	return u
}

// PrintUsage prints formatted usage information for fs to w.
func (u *UsageFormatter) PrintUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "%s - %s\n\n", u.AppName, u.AppDescription)

	fmt.Fprintf(w, "USAGE:\n")
	fmt.Fprintf(w, "  %s [OPTIONS]\n\n", filepath.Base(os.Args[0]))

	if len(u.Examples) > 0 {
		fmt.Fprintf(w, "EXAMPLES:\n")
		for _, example := range u.Examples {
			fmt.Fprintf(w, "  # %s\n", example.Description)
			fmt.Fprintf(w, "  %s\n\n", example.Command)
		}
	}

	fmt.Fprintf(w, "OPTIONS:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// CheckHelpAndVersion handles -help and -version and reports whether the
// command should exit.
func CheckHelpAndVersion(appName string, commonFlags *CommonFlags, formatter *UsageFormatter, fs *flag.FlagSet) bool {
	if *commonFlags.Version {
		PrintVersion(appName)
		return true
	}

	if *commonFlags.Help {
		formatter.PrintUsage(os.Stdout, fs)
		return true
	}

	return false
}

// SetupLogger initializes zerolog from the configured level and format,
// letting -verbose and -log-format override them.
func SetupLogger(commonFlags *CommonFlags, level, format string) {
	if *commonFlags.Verbose {
		level = "debug"
	}
	if *commonFlags.LogFormat != "" {
		format = *commonFlags.LogFormat
	}
	logger.Init(level, format)
}
