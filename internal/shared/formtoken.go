package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FormTokenField carries the one-time submission token.
const FormTokenField = "form_token"

// FormTokens issues one-time tokens that reject double submission of the
// same rendered form. Key format: portal:form:<scope>:<token>.
type FormTokens struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFormTokens constructs the store.
func NewFormTokens(client *redis.Client, ttl time.Duration) *FormTokens {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &FormTokens{client: client, ttl: ttl}
}

// Issue mints a token for a form scope, usually the module name.
func (f *FormTokens) Issue(ctx context.Context, scope string) (string, error) {
	if f == nil {
		return "", errors.New("form tokens not initialised")
	}
	token := uuid.NewString()
	if err := f.client.Set(ctx, f.key(scope, token), "issued", f.ttl).Err(); err != nil {
		return "", fmt.Errorf("form token issue: %w", err)
	}
	return token, nil
}

// Consume marks the token as used. A second call with the same token, or a
// token never issued, returns ErrDuplicateSubmission.
func (f *FormTokens) Consume(ctx context.Context, scope, token string) error {
	if f == nil {
		return errors.New("form tokens not initialised")
	}
	if token == "" {
		return ErrDuplicateSubmission
	}
	val, err := f.client.GetDel(ctx, f.key(scope, token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("form token consume: %w", err)
	}
	if val != "issued" {
		return ErrDuplicateSubmission
	}
	return nil
}

// Release re-arms a consumed token so the user can resubmit after a failed
// attempt (validation errors or backend rejection).
func (f *FormTokens) Release(ctx context.Context, scope, token string) error {
	if f == nil || token == "" {
		return nil
	}
	return f.client.SetNX(ctx, f.key(scope, token), "issued", f.ttl).Err()
}

func (f *FormTokens) key(scope, token string) string {
	return "portal:form:" + scope + ":" + token
}
