package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestNew_NoKeys(t *testing.T) {
	client, err := New(context.Background(), nil, "")

	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrNoAPIKeys)
}

func TestRotate_WrapsAround(t *testing.T) {
	c := &Client{clients: make([]*genai.Client, 3)}

	assert.Equal(t, 1, c.rotate())
	assert.Equal(t, 2, c.rotate())
	assert.Equal(t, 0, c.rotate())
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "http 429",
			err:      errors.New("googleapi: Error 429: quota exceeded"),
			expected: true,
		},
		{
			name:     "too many requests",
			err:      errors.New("Too Many Requests"),
			expected: true,
		},
		{
			name:     "resource exhausted",
			err:      errors.New("rpc error: code = RESOURCE_EXHAUSTED desc = quota"),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("connection refused"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRateLimited(tt.err))
		})
	}
}
