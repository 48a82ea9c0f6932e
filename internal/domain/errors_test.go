package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeOK},
		{fmt.Errorf("loading agenda: %w", ErrNotFound), CodeNotFound},
		{fmt.Errorf("%w: not latest", ErrPreconditionFailed), CodePreconditionFailed},
		{fmt.Errorf("%w: waited too long", ErrBusy), CodeBusy},
		{fmt.Errorf("%w: %w", ErrStoreFailure, context.DeadlineExceeded), CodeStoreFailure},
		{fmt.Errorf("something else"), CodeStoreFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeOf(tt.err), "%v", tt.err)
	}
}
