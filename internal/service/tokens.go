package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// maxTokenAttempts bounds the retry-on-collision loop for generated tokens.
const maxTokenAttempts = 5

// ErrTokenSpaceExhausted is returned when every generated candidate collided.
var ErrTokenSpaceExhausted = errors.New("could not generate a unique token")

// TokenFunc produces a candidate opaque token.
type TokenFunc func() string

// NewOpaqueToken returns a random (v4) UUID string.
func NewOpaqueToken() string {
	return uuid.NewString()
}

// uniqueToken draws candidates from gen until taken reports a free one.
func uniqueToken(ctx context.Context, gen TokenFunc, taken func(ctx context.Context, token string) (bool, error)) (string, error) {
	for i := 0; i < maxTokenAttempts; i++ {
		candidate := gen()
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check token uniqueness: %w", err)
		}
		if !used {
			return candidate, nil
		}
	}
	return "", ErrTokenSpaceExhausted
}
