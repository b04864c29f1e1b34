package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/joshharrison/pertloom/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // config key, e.g. "output.format"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidOutputFormats returns the accepted output.format values
func ValidOutputFormats() []string {
	return []string{"table", "json", "csv"}
}

// Validate checks the Config and returns every problem found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if !slices.Contains(ValidOutputFormats(), strings.ToLower(c.Output.Format)) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of %v", ValidOutputFormats()),
		})
	}

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of %v", logging.ValidLevels()),
		})
	}
	if f := strings.ToLower(c.Log.Format); f != logging.FormatText && f != logging.FormatJSON {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: "must be text or json",
		})
	}

	if _, _, err := net.SplitHostPort(c.Serve.Addr); err != nil {
		errs = append(errs, ValidationError{
			Field:   "serve.addr",
			Value:   c.Serve.Addr,
			Message: "must be host:port",
		})
	}

	if c.BD.Bin == "" {
		errs = append(errs, ValidationError{
			Field:   "bd.bin",
			Value:   c.BD.Bin,
			Message: "must not be empty",
		})
	}

	if c.Claude.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "claude.model",
			Value:   c.Claude.Model,
			Message: "must not be empty",
		})
	}
	if c.Claude.MaxTokens <= 0 {
		errs = append(errs, ValidationError{
			Field:   "claude.max_tokens",
			Value:   c.Claude.MaxTokens,
			Message: "must be positive",
		})
	}

	return errs
}
