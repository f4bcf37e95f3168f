package recwire

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidFormat        = "invalid_format"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeUnionExhausted       = "union_exhausted"
	CodeUnsupportedDialect   = "unsupported_dialect"
	CodeUnknownShape         = "unknown_shape"
	CodeUnknownRecord        = "unknown_record"
	CodeConfig               = "config_error"
	CodeParseError           = "parse_error"
	CodeValidation           = "validation"
)

// Issue represents a single encode, decode or schema generation error.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/cost).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"variant": "Point"})
	// for observability.
	Params map[string]any
}

// Issues is a collection of engine errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// issueAt builds a single-issue error at the given pointer path.
func issueAt(path, code, msg string) Issues {
	return Issues{Issue{Path: path, Code: code, Message: msg}}
}

// hasCode reports whether err carries an Issue with the given code.
func hasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// ValidationError wraps a failure reported by the validator collaborator.
// The original error is preserved for errors.Is/As chains.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "recwire: validation failed"
	}
	return "recwire: validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }
