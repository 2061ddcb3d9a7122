package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/inkwell/core"
)

func TestSeeder_Init(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.seeder.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test user and categories created successfully", first.Message)
	assert.Equal(t, DemoEmail, first.Email)
	assert.True(t, first.UserCreated)
	assert.Equal(t, []string{"Technology", "Crypto"}, first.Categories)
	assert.Equal(t, []string{"Technology", "Crypto"}, first.Created)

	second, err := env.seeder.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test user already exists", second.Message)
	assert.False(t, second.UserCreated)
	assert.Empty(t, second.Created)

	_, total, err := env.store.ListCategories(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

// Requirement: the demo user can sign in with the documented credentials
// and owns the seeded categories.
func TestSeeder_DemoUserCanSignIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.seeder.Init(ctx)
	require.NoError(t, err)

	result, err := env.auth.SignIn(ctx, core.SignInInput{Email: DemoEmail, Password: DemoPassword}, "", "")
	require.NoError(t, err)
	assert.Equal(t, DemoDisplayName, result.User.DisplayName)

	tech, err := env.store.GetCategoryBySlug(ctx, "technology")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, tech.Owner.ID)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(tech.Content, &doc))
	assert.Contains(t, string(tech.Content), "Technology related posts")
}

// Requirement: Seed after Init only adds the categories that are missing.
func TestSeeder_SeedAfterInit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.seeder.Init(ctx)
	require.NoError(t, err)

	result, err := env.seeder.Seed(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Seed completed successfully", result.Message)
	assert.False(t, result.UserCreated)
	assert.Equal(t, []string{"Technology", "Design", "Development", "Marketing"}, result.Categories)
	assert.Equal(t, []string{"Design", "Development", "Marketing"}, result.Created)

	_, total, err := env.store.ListCategories(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

// Requirement: concurrent bootstrap runs never create duplicate users or
// categories.
func TestSeeder_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = env.seeder.Init(ctx)
			} else {
				_, err = env.seeder.Seed(ctx)
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	users, total, err := env.store.ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, DemoEmail, users[0].Email)

	_, total, err = env.store.ListCategories(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestSeeder_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failWith("GetCategoryBySlug", errors.New("connection refused"))

	_, err := env.seeder.Init(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	assert.Equal(t, "Failed to initialize", err.Error())

	_, err = env.seeder.Seed(context.Background())
	assert.Equal(t, "Failed to seed database", err.Error())
}

// Requirement: a failed bootstrap can be retried and still yields a demo
// user that signs in.
func TestSeeder_Init_RetryAfterStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.store.failWith("CreateUserWithAccount", errors.New("connection reset"))
	_, err := env.seeder.Init(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	env.store.failWith("CreateUserWithAccount", nil)
	result, err := env.seeder.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test user and categories created successfully", result.Message)

	_, err = env.auth.SignIn(ctx, core.SignInInput{Email: DemoEmail, Password: DemoPassword}, "", "")
	assert.NoError(t, err)
}

// Requirement: a demo user without a password credential gets one on the
// next bootstrap instead of staying locked out.
func TestSeeder_Init_RepairsMissingCredential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.CreateUser(ctx, &core.User{Email: DemoEmail, DisplayName: DemoDisplayName}))

	_, err := env.auth.SignIn(ctx, core.SignInInput{Email: DemoEmail, Password: DemoPassword}, "", "")
	require.Error(t, err)

	env.store.failWith("CreateAccount", errors.New("connection reset"))
	_, err = env.seeder.Init(ctx)
	require.Error(t, err)

	env.store.failWith("CreateAccount", nil)
	result, err := env.seeder.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test user already exists", result.Message)
	assert.False(t, result.UserCreated)

	_, err = env.auth.SignIn(ctx, core.SignInInput{Email: DemoEmail, Password: DemoPassword}, "", "")
	require.NoError(t, err)

	_, err = env.seeder.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, env.store.callCount("CreateAccount"), "an existing credential is left alone")
}
