package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "passage", ID: "esv/genesis_1"},
			wantMsg:  "passage not found: esv/genesis_1",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "snapshot"},
			wantMsg:  "snapshot not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "file", ID: "psalm_23.html", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name:    "with field",
			err:     &ValidationError{Field: "chapter", Message: "out of range"},
			wantMsg: "validation failed for chapter: out of range",
		},
		{
			name:    "without field",
			err:     &ValidationError{Message: "invalid format"},
			wantMsg: "validation failed: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Errorf("errors.Is(%v, ErrInvalidInput) = false", tt.err)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	base := fmt.Errorf("permission denied")
	err := NewIO("read", "/tmp/snapshots", base)
	if got, want := err.Error(), "failed to read /tmp/snapshots: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("IOError does not unwrap to its cause")
	}

	noPath := &IOError{Operation: "sync", Err: base}
	if got, want := noPath.Error(), "failed to sync: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("location", "", `unexpected token "?"`)
	if got, want := err.Error(), `failed to parse location: unexpected token "?"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}

	withPath := NewParse("keystroke log", "log.json", "bad kind")
	if got, want := withPath.Error(), "failed to parse keystroke log at log.json: bad kind"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("translation", "xyz has no provider")
	if got, want := err.Error(), "unsupported translation: xyz has no provider"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("UnsupportedError should unwrap to ErrUnsupported")
	}

	bare := &UnsupportedError{Feature: "provider"}
	if got, want := bare.Error(), "unsupported provider"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestMalformedDocumentError(t *testing.T) {
	tests := []struct {
		name    string
		err     *MalformedDocumentError
		wantMsg string
	}{
		{
			name:    "with translation",
			err:     NewMalformedDocument("esv", "esv", "no verse number found"),
			wantMsg: "malformed esv document (esv): no verse number found",
		},
		{
			name:    "without translation",
			err:     NewMalformedDocument("apibible", "", "mixed chapters"),
			wantMsg: "malformed apibible document: mixed chapters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrMalformedDocument) {
				t.Error("errors.Is(err, ErrMalformedDocument) = false")
			}
		})
	}

	t.Run("cause keeps sentinel", func(t *testing.T) {
		cause := fmt.Errorf("bad location")
		err := &MalformedDocumentError{Provider: "esv", Reason: "x", Err: cause}
		wrapped := Wrap(err, "loading passage")
		if !errors.Is(wrapped, ErrMalformedDocument) {
			t.Error("wrapped error lost ErrMalformedDocument")
		}
		if !errors.Is(wrapped, cause) {
			t.Error("wrapped error lost its cause")
		}
	})
}

func TestInvariantError(t *testing.T) {
	err := NewInvariant("controller", "verse %s not in passage", "psalm 23:7")
	if got, want := err.Error(), "controller: invariant violation: verse psalm 23:7 not in passage"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvariant) {
		t.Error("InvariantError should unwrap to ErrInvariant")
	}
	var inv *InvariantError
	if !As(Wrap(err, "start"), &inv) {
		t.Fatal("As() failed to find InvariantError")
	}
	if inv.Component != "controller" {
		t.Errorf("Component = %q, want controller", inv.Component)
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps error", func(t *testing.T) {
		baseErr := fmt.Errorf("base error")
		wrapped := Wrap(baseErr, "context message")
		if !errors.Is(wrapped, baseErr) {
			t.Errorf("Wrap() error does not unwrap to base error")
		}
		if got, want := wrapped.Error(), "context message: base error"; got != want {
			t.Errorf("Wrap() = %q, want %q", got, want)
		}
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		if got := Wrap(nil, "context"); got != nil {
			t.Errorf("Wrap(nil) = %v, want nil", got)
		}
	})
}

func TestWrapf(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	wrapped := Wrapf(baseErr, "failed to parse %s", "psalm_23.html")
	if got, want := wrapped.Error(), "failed to parse psalm_23.html: base error"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if got := Wrapf(nil, "context %s", "test"); got != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", got)
	}
}

func TestIs(t *testing.T) {
	err := &NotFoundError{Resource: "test"}
	if !Is(err, ErrNotFound) {
		t.Error("Is() failed to match NotFoundError to ErrNotFound")
	}
}
