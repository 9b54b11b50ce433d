package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormTokens(t *testing.T) (*FormTokens, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFormTokens(client, time.Minute), mr
}

func TestFormTokenConsumedOnce(t *testing.T) {
	tokens, _ := newFormTokens(t)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, "orders")
	require.NoError(t, err)

	require.NoError(t, tokens.Consume(ctx, "orders", token))
	assert.ErrorIs(t, tokens.Consume(ctx, "orders", token), ErrDuplicateSubmission)
}

func TestFormTokenScopedAndUnknown(t *testing.T) {
	tokens, _ := newFormTokens(t)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, "orders")
	require.NoError(t, err)
	assert.ErrorIs(t, tokens.Consume(ctx, "users", token), ErrDuplicateSubmission)
	assert.ErrorIs(t, tokens.Consume(ctx, "orders", ""), ErrDuplicateSubmission)
	assert.ErrorIs(t, tokens.Consume(ctx, "orders", "never-issued"), ErrDuplicateSubmission)
}

func TestFormTokenReleaseAllowsRetry(t *testing.T) {
	tokens, _ := newFormTokens(t)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, "vitals")
	require.NoError(t, err)
	require.NoError(t, tokens.Consume(ctx, "vitals", token))
	require.NoError(t, tokens.Release(ctx, "vitals", token))
	assert.NoError(t, tokens.Consume(ctx, "vitals", token))
}

func TestFormTokenExpires(t *testing.T) {
	tokens, mr := newFormTokens(t)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, "users")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, tokens.Consume(ctx, "users", token), ErrDuplicateSubmission)
}
