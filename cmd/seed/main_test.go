package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-task-tracker/internal/application"
	"github.com/oksasatya/go-task-tracker/internal/infrastructure/memory"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
)

func TestSeedUser_Idempotent(t *testing.T) {
	hasher := helpers.Bcrypt{Cost: bcrypt.MinCost}
	creds := application.NewCredentialStore(memory.NewUserRepository(), hasher)
	ctx := context.Background()

	u, created, err := seedUser(ctx, creds, "Demo", "demo@tasks.local", "password123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, creds.Verify(u, "password123"))

	again, created, err := seedUser(ctx, creds, "Demo", "demo@tasks.local", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
}
