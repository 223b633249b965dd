package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeWrite, "write output"))
	})

	t.Run("message includes code, context and cause", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := Wrap(cause, CodeWrite, "write /tmp/out.yml")

		assert.Equal(t, "write_error: write /tmp/out.yml: permission denied", err.Error())
		assert.ErrorIs(t, err, cause)
	})
}

func TestHasCode(t *testing.T) {
	inner := New(CodeRegistryUnavailable, "registry down")
	outer := Wrap(inner, CodeInternal, "run failed")

	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{name: "nil error", err: nil, code: CodeConfig, expected: false},
		{name: "plain error", err: errors.New("boom"), code: CodeConfig, expected: false},
		{name: "direct match", err: inner, code: CodeRegistryUnavailable, expected: true},
		{name: "nested match", err: outer, code: CodeRegistryUnavailable, expected: true},
		{name: "outer match", err: outer, code: CodeInternal, expected: true},
		{name: "fmt wrapped", err: fmt.Errorf("ctx: %w", inner), code: CodeRegistryUnavailable, expected: true},
		{name: "no match", err: outer, code: CodeWrite, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasCode(tt.err, tt.code))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInvalidRecord, CodeOf(fmt.Errorf("wrapped: %w", Newf(CodeInvalidRecord, "record %q", "proj-a"))))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("unclassified")))
}
