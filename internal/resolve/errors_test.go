package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"discordcore/pkg/domain"
	"discordcore/pkg/platform/sentinel"
)

func TestNewFailure_Category(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  Category
		retryable bool
		sentinel  error
	}{
		{"not found", NewFetchError(CategoryNotFound, "gone", nil), CategoryNotFound, false, sentinel.ErrNotFound},
		{"rate limited", NewFetchError(CategoryRateLimited, "429", nil), CategoryRateLimited, true, sentinel.ErrRateLimited},
		{"wrapped fetch error", fmt.Errorf("get: %w", NewFetchError(CategoryUnavailable, "502", nil)), CategoryUnavailable, true, sentinel.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, CategoryTimeout, true, sentinel.ErrTimeout},
		{"bad data", NewFetchError(CategoryBadData, "truncated", nil), CategoryBadData, false, sentinel.ErrBadData},
		{"unknown", errors.New("boom"), CategoryInternal, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFailure(domain.KindUser, 1, tt.err)
			assert.Equal(t, tt.category, f.Category)
			assert.Equal(t, tt.retryable, f.Retryable)
			assert.ErrorIs(t, f, tt.err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, f, tt.sentinel)
			}
			assert.Equal(t, tt.category, GetCategory(f))
			assert.Equal(t, tt.retryable, IsRetryable(f))
		})
	}
}

func TestFetchError_Message(t *testing.T) {
	assert.Equal(t, "fetch [timeout]: slow", NewFetchError(CategoryTimeout, "slow", nil).Error())
	assert.Equal(t, "fetch [internal]: dial: refused",
		NewFetchError(CategoryInternal, "dial", errors.New("refused")).Error())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(sentinel.ErrNotFound))
	assert.True(t, IsNotFound(newFailure(domain.KindGuild, 1, NewFetchError(CategoryNotFound, "", nil))))
	assert.False(t, IsNotFound(newFailure(domain.KindGuild, 1, errors.New("boom"))))
	assert.False(t, IsRetryable(errors.New("boom")))
}
