package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	"shopapi/internal/logger"
	repo "shopapi/internal/repository"
	"shopapi/internal/validator"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, email string, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

// AuthUsecase は会員登録・ログイン・プロフィール取得の処理。
type AuthUsecase struct {
	userRepo repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

// DI
func NewAuthUsecase(
	userRepo repo.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

type SignupInput struct {
	Email    string
	Password string
	Role     string //空ならUSER
}

type AuthOutput struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// 会員登録。
// ハッシュ化はここで明示的に行う（保存時フックのような暗黙の仕組みにしない）。
// email重複と2人目の管理者はDBの一意制約が弾き、409で返す。
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (AuthOutput, error) {
	if err := validator.ValidateSignup(in.Email, in.Password, in.Role); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role := model.RoleUser
	if strings.EqualFold(in.Role, string(model.RoleAdmin)) {
		role = model.RoleAdmin
	}

	//パスワードをハッシュ化（平文は保存しない）
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		logger.L().Error("password hash failed", zap.Error(err))
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := u.clock.Now()
	user := &model.User{
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	//条件付きINSERT。競合はセンチネルエラーで返ってくる。
	if err := u.userRepo.Create(ctx, user); err != nil {
		switch err {
		case repo.ErrEmailTaken:
			return AuthOutput{}, NewHTTPError(http.StatusConflict, "email: this email is already registered")
		case repo.ErrAdminExists:
			return AuthOutput{}, NewHTTPError(http.StatusConflict, "role: an admin user already exists, only one admin is allowed")
		}
		logger.L().Error("create user failed", zap.String("email", user.Email), zap.Error(err))
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	token, _, err := u.issuer.Issue(user.ID, user.Email, user.Role, now)
	if err != nil {
		logger.L().Error("issue token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return AuthOutput{User: *user, Token: token}, nil
}

type LoginInput struct {
	Email    string
	Password string
}

// ログイン。
// 失敗理由（メール無し/パスワード違い）は区別せず401で返す。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthOutput, error) {
	if err := validator.ValidateLogin(in.Email, in.Password); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := u.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if err == repo.ErrUserNotFound {
			return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, _, err := u.issuer.Issue(user.ID, user.Email, user.Role, u.clock.Now())
	if err != nil {
		logger.L().Error("issue token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return AuthOutput{User: *user, Token: token}, nil
}

// 自分のプロフィール取得
func (u *AuthUsecase) Profile(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == repo.ErrUserNotFound {
			return model.User{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return *user, nil
}
