package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidBatch    = fmt.Errorf("invalid batch file")

	// Filesystem errors
	ErrArchiveWrite = fmt.Errorf("archive write failed")
)

// Kind classifies an error for the console boundary.
type Kind int

const (
	KindUnexpected Kind = iota
	KindResolution
	KindValidation
	KindTransport
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unexpected"
	}
}

// Recoverable reports whether errors of this kind are rendered as warnings.
func (k Kind) Recoverable() bool {
	return k == KindResolution || k == KindValidation
}

// Error is a classified error with optional playlist suggestions.
type Error struct {
	Kind        Kind
	Op          string
	Msg         string
	Suggestions []string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ResolutionError reports a playlist name that did not resolve to exactly one playlist.
func ResolutionError(name string, suggestions []string) *Error {
	return &Error{
		Kind:        KindResolution,
		Msg:         fmt.Sprintf("playlist '%s' not found", name),
		Suggestions: suggestions,
		Err:         ErrPlaylistNotFound,
	}
}

// ValidationError reports bad user input. err is usually one of the input sentinels.
func ValidationError(err error, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...), Err: err}
}

// TransportError wraps a failure talking to the remote service.
func TransportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// FilesystemError wraps a failure reading or writing the archive directory.
func FilesystemError(op string, err error) *Error {
	return &Error{Kind: KindFilesystem, Op: op, Err: err}
}

// KindOf classifies err. Unclassified errors wrapping a known sentinel take the sentinel's kind.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnexpected
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, ErrPlaylistNotFound):
		return KindResolution
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMissingArgument),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInvalidBatch):
		return KindValidation
	case errors.Is(err, ErrAPIRequest),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrAuthFailed),
		errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, ErrTimeout):
		return KindTransport
	case errors.Is(err, ErrArchiveWrite):
		return KindFilesystem
	}
	return KindUnexpected
}

// SuggestionsOf returns the suggestions attached to the first [Error] in err's chain.
func SuggestionsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Suggestions
	}
	return nil
}

// Chain lists err and every error it wraps, outermost first.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, fmt.Sprintf("%T: %v", err, err))
		err = errors.Unwrap(err)
	}
	return chain
}
