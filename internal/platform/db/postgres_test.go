package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDSNDisablesDatabase(t *testing.T) {
	pool, err := New(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestNewRejectsMalformedDSN(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz")
	assert.ErrorContains(t, err, "platform/db: parse config")
}
