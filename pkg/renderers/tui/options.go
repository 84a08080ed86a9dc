package tui

import "github.com/rs/zerolog"

// OutputFormat controls how the edited tree is serialized when the session
// ends or the submission is shown.
type OutputFormat string

const (
	// OutputFormatJSON emits the tree's value as indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits the collected submission fields.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits the outline.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional message prefixes the session applies when
// printing. Keep minimal to avoid coupling session logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is used when no theme is supplied.
var DefaultTheme = Theme{InfoPrefix: "", ErrorPrefix: "error: "}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(s *Session) {
		if format != "" {
			s.format = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithName sets the label of the outline's root line.
func WithName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.log = logger.With().Str("source", "tui").Logger()
	}
}
