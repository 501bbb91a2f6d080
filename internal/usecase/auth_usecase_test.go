package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shopapi/internal/domain/model"
	"shopapi/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthUsecase(t *testing.T) (*usecase.AuthUsecase, *memUserRepo) {
	t.Helper()
	userRepo := newMemUserRepo()
	uc := usecase.NewAuthUsecase(
		userRepo,
		usecase.NewBcryptPasswordHasher(bcrypt.MinCost),
		usecase.NewBcryptPasswordVerifier(),
		&fakeIssuer{},
		&fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	)
	return uc, userRepo
}

// パスワードは平文では保存されない
func TestSignup_HashesPassword(t *testing.T) {
	uc, userRepo := newAuthUsecase(t)

	out, err := uc.Signup(context.Background(), usecase.SignupInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, out.User.Role)
	assert.NotEmpty(t, out.Token)

	stored, err := userRepo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestSignup_DuplicateEmailConflict(t *testing.T) {
	uc, _ := newAuthUsecase(t)
	ctx := context.Background()

	_, err := uc.Signup(ctx, usecase.SignupInput{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = uc.Signup(ctx, usecase.SignupInput{Email: "alice@example.com", Password: "password456"})
	require.Error(t, err)

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Contains(t, he.Message, "email")
}

// 管理者は1人だけ。2人目は409で、既存の管理者はそのまま。
func TestSignup_SecondAdminConflict(t *testing.T) {
	uc, userRepo := newAuthUsecase(t)
	ctx := context.Background()

	_, err := uc.Signup(ctx, usecase.SignupInput{Email: "admin@example.com", Password: "password123", Role: "ADMIN"})
	require.NoError(t, err)

	_, err = uc.Signup(ctx, usecase.SignupInput{Email: "second@example.com", Password: "password123", Role: "admin"})
	require.Error(t, err)

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Contains(t, he.Message, "admin")

	//2人目は保存されていない
	_, err = userRepo.FindByEmail(ctx, "second@example.com")
	assert.Error(t, err)
}

func TestSignup_InvalidInput(t *testing.T) {
	uc, _ := newAuthUsecase(t)
	ctx := context.Background()

	cases := map[string]usecase.SignupInput{
		"bad email":      {Email: "not-an-email", Password: "password123"},
		"short password": {Email: "alice@example.com", Password: "short"},
		"bad role":       {Email: "alice@example.com", Password: "password123", Role: "SUPERUSER"},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Signup(ctx, in)
			require.Error(t, err)
			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Status)
		})
	}
}

// メール無しとパスワード違いは同じ401を返す（攻撃者に区別させない）
func TestLogin_InvalidCredentials(t *testing.T) {
	uc, _ := newAuthUsecase(t)
	ctx := context.Background()

	_, err := uc.Signup(ctx, usecase.SignupInput{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, errWrongPassword := uc.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "wrongpassword"})
	require.Error(t, errWrongPassword)
	_, errNoUser := uc.Login(ctx, usecase.LoginInput{Email: "ghost@example.com", Password: "password123"})
	require.Error(t, errNoUser)

	heWrong, ok := usecase.AsHTTPError(errWrongPassword)
	require.True(t, ok)
	heGhost, ok := usecase.AsHTTPError(errNoUser)
	require.True(t, ok)

	assert.Equal(t, http.StatusUnauthorized, heWrong.Status)
	assert.Equal(t, heWrong.Message, heGhost.Message)
}

func TestLogin_Success(t *testing.T) {
	uc, _ := newAuthUsecase(t)
	ctx := context.Background()

	signedUp, err := uc.Signup(ctx, usecase.SignupInput{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	out, err := uc.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, out.User.ID)
	assert.NotEmpty(t, out.Token)
}

func TestProfile_NotFound(t *testing.T) {
	uc, _ := newAuthUsecase(t)

	_, err := uc.Profile(context.Background(), 999)
	require.Error(t, err)

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}
