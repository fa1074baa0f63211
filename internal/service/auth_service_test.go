package service

import (
	"testing"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"
	"github.com/clepigdo/Simig-Webapps/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (AuthService, repository.UserRepository) {
	t.Helper()
	db := setupTestDB(t)
	userRepo := repository.NewUserRepo(db)
	return NewAuthService(userRepo), userRepo
}

func registerUser(t *testing.T, svc AuthService, username string) *model.User {
	t.Helper()
	user, err := svc.Register(&RegisterRequest{
		Username: username,
		Password: "secret123",
		Email:    username + "@example.com",
		FullName: "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterDefaults(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user := registerUser(t, svc, "budi")

	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.Equal(t, model.DefaultProfileImage, user.ProfileImage)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerUser(t, svc, "budi")

	_, err := svc.Register(&RegisterRequest{
		Username: "budi",
		Password: "another123",
		FullName: "Second Budi",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegisterShortPasswordRejected(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(&RegisterRequest{
		Username: "budi",
		Password: "abc",
		FullName: "Budi",
	})
	assert.Error(t, err)
}

func TestLoginReturnsTokenPair(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := registerUser(t, svc, "budi")

	resp, err := svc.Login("budi", "secret123")
	require.NoError(t, err)

	assert.Equal(t, user.ID, resp.ID)
	assert.Equal(t, model.RoleUser, resp.Role)
	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)

	claims, err := jwt.ValidateToken(resp.Access)
	require.NoError(t, err)
	assert.Equal(t, jwt.TypeAccess, claims.TokenType)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerUser(t, svc, "budi")

	_, err := svc.Login("budi", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	user := registerUser(t, svc, "budi")

	user.IsActive = false
	require.NoError(t, userRepo.Update(user))

	_, err := svc.Login("budi", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerUser(t, svc, "budi")

	resp, err := svc.Login("budi", "secret123")
	require.NoError(t, err)

	access, err := svc.Refresh(resp.Refresh)
	require.NoError(t, err)

	claims, err := jwt.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, jwt.TypeAccess, claims.TokenType)
	assert.Equal(t, "budi", claims.Username)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerUser(t, svc, "budi")

	resp, err := svc.Login("budi", "secret123")
	require.NoError(t, err)

	_, err = svc.Refresh(resp.Access)
	assert.Error(t, err)
}

func TestUpdateProfileKeepsRole(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	user := registerUser(t, svc, "budi")

	profile, err := svc.UpdateProfile(user.ID, &UpdateProfileRequest{
		Username: "budi2",
		Email:    "budi2@example.com",
		FullName: "Budi Renamed",
	})
	require.NoError(t, err)

	assert.Equal(t, "budi2", profile.Username)
	assert.Equal(t, model.RoleUser, profile.Role)

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "budi2", stored.Username)
}

func TestUpdateProfileUsernameTaken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerUser(t, svc, "budi")
	other := registerUser(t, svc, "siti")

	_, err := svc.UpdateProfile(other.ID, &UpdateProfileRequest{Username: "budi"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := registerUser(t, svc, "budi")

	err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword:     "secret123",
		NewPassword:     "newsecret",
		ConfirmPassword: "newsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login("budi", "secret123")
	assert.Error(t, err)

	_, err = svc.Login("budi", "newsecret")
	assert.NoError(t, err)
}

func TestChangePasswordConfirmMismatch(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := registerUser(t, svc, "budi")

	err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword:     "secret123",
		NewPassword:     "newsecret",
		ConfirmPassword: "different",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestChangePasswordWrongOld(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := registerUser(t, svc, "budi")

	err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword:     "bogus",
		NewPassword:     "newsecret",
		ConfirmPassword: "newsecret",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestUpdateProfileImage(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	user := registerUser(t, svc, "budi")

	require.NoError(t, svc.UpdateProfileImage(user.ID, user.ID.String()+".png"))

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String()+".png", stored.ProfileImage)
}
