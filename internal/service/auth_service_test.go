package service

import (
	"context"
	"testing"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.auth.Register(ctx, "a@x.com", "pw", "A")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.Equal(t, model.Learner, u.Role)
	assert.Equal(t, "ko", u.Language)
	assert.Equal(t, "dark", u.Theme)

	_, err = env.auth.Register(ctx, "a@x.com", "other", "B")
	assert.ErrorIs(t, err, util.ErrDuplicateEmail)

	var count int64
	require.NoError(t, env.db.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterAdminEmail(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.auth.Register(context.Background(), "Admin@X.com", "pw", "Root")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "a@x.com")

	u, err := env.auth.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "a@x.com", u.Email)

	u, err = env.auth.Authenticate(ctx, "a@x.com", "wrong")
	assert.NoError(t, err)
	assert.Nil(t, u)

	u, err = env.auth.Authenticate(ctx, "nobody@x.com", "pw")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestLoginRecordsHistoryAndResolves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := env.register(t, "a@x.com")

	token, user, err := env.auth.Login(ctx, "a@x.com", "pw", LoginMeta{IPAddress: "10.0.0.1", DeviceInfo: "curl/8"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	history, err := env.users.LoginHistory(ctx, user, 0, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "10.0.0.1", *history[0].IPAddress)

	resolved, err := env.auth.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)

	_, _, err = env.auth.Login(ctx, "a@x.com", "wrong", LoginMeta{})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = env.auth.ResolveToken(ctx, "garbage")
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestResolveTokenDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@x.com")

	token, err := env.auth.IssueToken(u)
	require.NoError(t, err)
	require.NoError(t, env.users.Delete(ctx, u))

	_, err = env.auth.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
