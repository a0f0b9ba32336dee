package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cursor"
	"github.com/conduit-lang/modelref/internal/introspect"
	"github.com/conduit-lang/modelref/internal/relations"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// paint returns a color that honours noColor
func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ MODEL NOT FOUND: Pst
//	   Cannot find model 'Pst'.
//
//	   Did you mean: Post?
//
//	   → See all models: modelref models
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelWarning:
		headerColor = paint(opts.NoColor, color.FgYellow, color.Bold)
		bodyColor = paint(opts.NoColor, color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = paint(opts.NoColor, color.FgCyan, color.Bold)
		bodyColor = paint(opts.NoColor, color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = paint(opts.NoColor, color.FgRed, color.Bold)
		bodyColor = paint(opts.NoColor, color.FgRed)
		symbol = "❌"
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// Explain maps a command error onto ErrorOptions, recognising the typed
// errors of the catalog, relation, cursor and introspection packages.
// Unknown errors are reported as-is.
func Explain(err error, noColor bool) ErrorOptions {
	var (
		modelErr    *catalog.ModelNotFoundError
		fieldErr    *catalog.FieldNotFoundError
		relationErr *relations.NotARelationError
		cursorErr   *cursor.MalformedError
	)

	opts := ErrorOptions{Level: ErrorLevelError, Problem: err.Error(), NoColor: noColor}

	switch {
	case errors.As(err, &modelErr):
		opts.Context = "MODEL NOT FOUND"
		opts.Problem = fmt.Sprintf("Cannot find model '%s'.", modelErr.Name)
		opts.Suggestions = modelErr.Suggestions
		opts.HelpCommands = []string{"See all models: modelref models"}
	case errors.As(err, &fieldErr):
		opts.Context = "FIELD NOT FOUND"
		opts.Problem = fmt.Sprintf("Model '%s' has no field '%s'.", fieldErr.Model, fieldErr.Field)
		opts.Suggestions = fieldErr.Suggestions
		opts.HelpCommands = []string{fmt.Sprintf("See its fields: modelref describe %s", fieldErr.Model)}
	case errors.As(err, &relationErr):
		opts.Context = "NOT A RELATION"
		opts.Problem = fmt.Sprintf("Field '%s' of model '%s' is a %s field.", relationErr.Field, relationErr.Model, relationErr.Kind)
		opts.HelpCommands = []string{fmt.Sprintf("See its relations: modelref describe %s", relationErr.Model)}
	case errors.As(err, &cursorErr):
		opts.Context = "MALFORMED CURSOR"
		opts.Problem = fmt.Sprintf("Cannot decode cursor: %s.", cursorErr.Reason)
		opts.Consequence = "Cursors must come from the same model and field they are decoded for."
	case errors.Is(err, cursor.ErrInvalidCursorField):
		opts.Context = "INVALID CURSOR FIELD"
		opts.HelpCommands = []string{"Cursor fields are scalar or enum fields, or the primary key name"}
	case errors.Is(err, cursor.ErrUnsupportedValue), errors.Is(err, cursor.ErrMissingKeyField):
		opts.Context = "INVALID CURSOR VALUE"
	case errors.Is(err, introspect.ErrUnsupportedDriver):
		opts.Context = "CONFIGURATION ERROR"
		opts.Suggestions = []string{"postgres", "pgx", "sqlite3"}
		opts.HelpCommands = []string{"Get help: modelref introspect --help"}
	}

	return opts
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat modelref.yml",
			"Get help: modelref --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}
