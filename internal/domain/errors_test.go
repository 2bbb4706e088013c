package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "sentinel", err: ErrCodeUsed, want: KindConflict},
		{name: "wrapped", err: fmt.Errorf("%w: amount must be positive", ErrValidation), want: KindValidation},
		{name: "double wrapped", err: fmt.Errorf("apply: %w", fmt.Errorf("%w: user 1", ErrInsufficientBalance)), want: KindInsufficientBalance},
		{name: "foreign error", err: errors.New("boom"), want: KindInternal},
		{name: "nil", err: nil, want: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrappedSentinelMatches(t *testing.T) {
	err := fmt.Errorf("%w: order AF20240101000001", ErrOrderNotFound)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NotErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, "not_found", KindOf(err).String())
}
