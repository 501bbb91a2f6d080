package repository

import (
	"context"
	"errors"

	"shopapi/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 一意制約違反（email重複）
var ErrEmailTaken = errors.New("email already taken")

// 管理者は1人だけ（2人目の作成は拒否）
var ErrAdminExists = errors.New("admin already exists")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。一意制約違反はErrEmailTaken / ErrAdminExistsに変換して返す。
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
