package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeParse, "bad json at byte %d", 17),
			want: "PARSE_ERROR: bad json at byte 17",
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodeIO, fmt.Errorf("disk full"), "save graph"),
			want: "IO_ERROR: save graph: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeNodeNotFound, "node %q", "n1")

	if !Is(err, ErrCodeNodeNotFound) {
		t.Error("Is() = false, want true for matching code")
	}
	if Is(err, ErrCodeIO) {
		t.Error("Is() = true, want false for non-matching code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeIO) {
		t.Error("Is() = true, want false for plain error")
	}
}

func TestIsUnwrapsChain(t *testing.T) {
	inner := New(ErrCodeCanceled, "user aborted")
	outer := fmt.Errorf("open document: %w", inner)

	if !Is(outer, ErrCodeCanceled) {
		t.Error("Is() should find code through wrapped chain")
	}
	if GetCode(outer) != ErrCodeCanceled {
		t.Errorf("GetCode() = %q, want %q", GetCode(outer), ErrCodeCanceled)
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(ErrCodeIO, cause, "write note")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should match the wrapped cause")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeIO, "could not save")); got != "could not save" {
		t.Errorf("UserMessage() = %q, want %q", got, "could not save")
	}
	if got := UserMessage(fmt.Errorf("boom")); got != "boom" {
		t.Errorf("UserMessage() = %q, want %q", got, "boom")
	}
}
