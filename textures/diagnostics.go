package textures

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
)

// Kind classifies a reported problem.
type Kind int

const (
	// FormatMismatch: the source transfer format differs from the texture's.
	FormatMismatch Kind = iota + 1
	// OutOfBounds: the requested region does not fit the allocated extent.
	OutOfBounds
	// UnsupportedElementType: the element type or format is not one of the supported ones.
	UnsupportedElementType
	// InvalidState: the texture is used before Allocate.
	InvalidState
	// BackendFailure: the graphics backend rejected a call.
	BackendFailure
)

var kindNames = map[Kind]string{
	FormatMismatch:         "format-mismatch",
	OutOfBounds:            "out-of-bounds",
	UnsupportedElementType: "unsupported-element-type",
	InvalidState:           "invalid-state",
	BackendFailure:         "backend-failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels marked onto returned errors; test with errors.Is.
var (
	ErrFormatMismatch         = errors.New("format mismatch")
	ErrOutOfBounds            = errors.New("region out of bounds")
	ErrUnsupportedElementType = errors.New("unsupported element type")
	ErrInvalidState           = errors.New("invalid texture state")
	ErrBackend                = errors.New("backend failure")
)

func (k Kind) sentinel() error {
	switch k {
	case FormatMismatch:
		return ErrFormatMismatch
	case OutOfBounds:
		return ErrOutOfBounds
	case UnsupportedElementType:
		return ErrUnsupportedElementType
	case InvalidState:
		return ErrInvalidState
	}
	return ErrBackend
}

// KindOf recovers the Kind of an error returned by this package, or 0.
func KindOf(err error) Kind {
	for k := FormatMismatch; k <= BackendFailure; k++ {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}
	return 0
}

// Sink receives diagnostics from an ArrayTexture.
type Sink interface {
	Report(kind Kind, msg string)
}

// SlogSink logs reports at error level. A nil Logger uses the package logger.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Report(kind Kind, msg string) {
	l := s.Logger
	if l == nil {
		l = Logger()
	}
	l.Error(msg, "kind", kind.String())
}

// Report is one recorded diagnostic.
type Report struct {
	Kind    Kind
	Message string
}

// RecordingSink keeps every report in memory.
type RecordingSink struct {
	mu      sync.Mutex
	reports []Report
}

func (s *RecordingSink) Report(kind Kind, msg string) {
	s.mu.Lock()
	s.reports = append(s.reports, Report{Kind: kind, Message: msg})
	s.mu.Unlock()
}

// Reports returns a copy of the recorded reports.
func (s *RecordingSink) Reports() []Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Report(nil), s.reports...)
}

// Kinds returns the kinds of the recorded reports in order.
func (s *RecordingSink) Kinds() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]Kind, len(s.reports))
	for i, r := range s.reports {
		kinds[i] = r.Kind
	}
	return kinds
}

func (s *RecordingSink) Reset() {
	s.mu.Lock()
	s.reports = nil
	s.mu.Unlock()
}
