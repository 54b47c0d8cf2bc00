package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/utils"
	"github.com/fyd-app/fyd-api/internal/validation"
)

func TestRegister_Success(t *testing.T) {
	s, _ := newAuth(t)

	res, err := s.Register(context.Background(), RegisterInput{
		Name: "T", Email: "T@x.com", Password: "p", City: "Paris", Interests: []string{"sport"},
	})
	require.NoError(t, err)

	assert.Equal(t, "t@x.com", res.User.Email)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.NotEqual(t, "p", res.User.PasswordHash)
	assert.Empty(t, res.RefreshToken)

	id, err := utils.ParseToken(testSecret, res.AccessToken, utils.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, utils.Identity{UserID: res.User.ID.Hex(), Email: "t@x.com", Role: "user"}, id)
}

func TestRegister_DuplicateEmailIsValidationError(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()
	in := RegisterInput{Name: "T", Email: "t@x.com", Password: "p"}

	_, err := s.Register(ctx, in)
	require.NoError(t, err)

	_, err = s.Register(ctx, in)
	require.Error(t, err)
	assert.True(t, validation.IsError(err))
}

func TestRegister_InvalidInput(t *testing.T) {
	s, repo := newAuth(t)
	ctx := context.Background()

	for name, in := range map[string]RegisterInput{
		"missing name":     {Email: "t@x.com", Password: "p"},
		"missing email":    {Name: "T", Password: "p"},
		"missing password": {Name: "T", Email: "t@x.com"},
		"bad email":        {Name: "T", Email: "not-an-email", Password: "p"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(ctx, in)
			assert.True(t, validation.IsError(err), "got %v", err)
		})
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLogin_Success(t *testing.T) {
	s, repo := newAuth(t)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterInput{Name: "T", Email: "t@x.com", Password: "p"})
	require.NoError(t, err)

	res, err := s.Login(ctx, "t@x.com", "p")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	stored, err := repo.GetByEmail(ctx, "t@x.com")
	require.NoError(t, err)
	assert.Equal(t, utils.HashRefreshRaw(res.RefreshToken), stored.RefreshToken)
}

func TestLogin_DoesNotRevealWhichPartFailed(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterInput{Name: "T", Email: "t@x.com", Password: "p"})
	require.NoError(t, err)

	_, errWrongPassword := s.Login(ctx, "t@x.com", "wrong")
	_, errUnknownEmail := s.Login(ctx, "nobody@x.com", "p")

	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

func TestLogin_InactiveUserRejected(t *testing.T) {
	s, repo := newAuth(t)
	ctx := context.Background()
	res, err := s.Register(ctx, RegisterInput{Name: "T", Email: "t@x.com", Password: "p"})
	require.NoError(t, err)

	inactive := false
	_, err = repo.Update(ctx, res.User.ID.Hex(), model.UserUpdate{IsActive: &inactive})
	require.NoError(t, err)

	_, err = s.Login(ctx, "t@x.com", "p")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterInput{Name: "T", Email: "t@x.com", Password: "p"})
	require.NoError(t, err)
	login, err := s.Login(ctx, "t@x.com", "p")
	require.NoError(t, err)

	next, err := s.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, next.RefreshToken)

	_, err = s.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "rotated token must not be reusable")

	_, err = s.Refresh(ctx, next.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "access token is not a refresh token")
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterInput{Name: "T", Email: "t@x.com", Password: "p"})
	require.NoError(t, err)
	login, err := s.Login(ctx, "t@x.com", "p")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, login.User.ID.Hex()))
	_, err = s.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.NoError(t, s.Logout(ctx, "665f1c2e9b1e8a0012345678"))
}
