package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"invalid path", fmt.Errorf("reading query file: %w", ErrInvalidPath), ExitUsage},
		{"invalid input", ErrInvalidInput, ExitUsage},
		{"app error overrides", Newf(ErrInvalidPath, ExitFailure, "custom %d", 1), ExitFailure},
		{"other", ErrInternal, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestAppErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("task failed: %w", New(ErrTaskPanic, ExitFailure, "boom"))
	assert.True(t, Is(err, ErrTaskPanic))
	assert.Equal(t, "task panicked: boom", New(ErrTaskPanic, ExitFailure, "boom").Error())

	var appErr *AppError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, "boom", appErr.Message)
}
