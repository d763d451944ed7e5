package app

import (
	"errors"
	"testing"
)

func TestFileErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *FileError
		expected string
	}{
		{
			name:     "without cause",
			err:      &FileError{Op: "open", Path: "/tmp/a.txt"},
			expected: "open /tmp/a.txt",
		},
		{
			name:     "with cause",
			err:      &FileError{Op: "save", Path: "/tmp/a.txt", Err: errors.New("disk full")},
			expected: "save /tmp/a.txt: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFileErrorUnwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := &FileError{Op: "open", Path: "/tmp/a.txt", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestInitErrorError(t *testing.T) {
	err := &InitError{Component: "rules", Err: errors.New("unknown catalog")}

	if got := err.Error(); got != "init rules: unknown catalog" {
		t.Errorf("Error() = %q, expected %q", got, "init rules: unknown catalog")
	}
	if !errors.Is(err, err.Err) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestErrorListEmpty(t *testing.T) {
	var errs ErrorList

	if errs.HasErrors() {
		t.Error("expected empty list to report no errors")
	}
	if err := errs.AsError(); err != nil {
		t.Errorf("expected AsError to return nil, got %v", err)
	}
}

func TestErrorListIgnoresNil(t *testing.T) {
	var errs ErrorList
	errs.Add(nil)

	if errs.HasErrors() {
		t.Error("expected list to ignore nil errors")
	}
}

func TestErrorListSingle(t *testing.T) {
	var errs ErrorList
	errs.Add(errors.New("watcher stuck"))

	if errs.Len() != 1 {
		t.Fatalf("expected 1 error, got %d", errs.Len())
	}
	if got := errs.Error(); got != "watcher stuck" {
		t.Errorf("Error() = %q, expected the bare message", got)
	}
}

func TestErrorListMultiple(t *testing.T) {
	var errs ErrorList
	errs.Add(errors.New("first"))
	errs.Add(errors.New("second"))

	if errs.Len() != 2 {
		t.Fatalf("expected 2 errors, got %d", errs.Len())
	}
	expected := "2 errors: first: first"
	if got := errs.Error(); got != expected {
		t.Errorf("Error() = %q, expected %q", got, expected)
	}
	if errs.AsError() == nil {
		t.Error("expected AsError to return the list")
	}
}
