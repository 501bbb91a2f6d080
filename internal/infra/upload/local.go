package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 画像アップロードの約束。
// 生バイトを受け取り、公開URLを返す。失敗したら商品作成ごと失敗させる。
// RemoveはDB側の作成が失敗したときの孤児ファイル掃除に使う（ベストエフォート）。
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// ローカルディスクに保存して静的配信URLを返す実装。
type LocalUploader struct {
	dir     string
	baseURL string
}

// DI
func NewLocalUploader(dir string, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: baseURL}, nil
}

// 名前衝突を避けるためUUIDを前置して保存する
func (u *LocalUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + "-" + filepath.Base(filename)
	dst := filepath.Join(u.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		//中途半端なファイルは残さない
		os.Remove(dst)
		return "", err
	}

	return u.baseURL + "/" + name, nil
}

// Uploadが返したURLのファイルを削除する。既に無ければno-op。
func (u *LocalUploader) Remove(ctx context.Context, url string) error {
	name := filepath.Base(strings.TrimPrefix(url, u.baseURL+"/"))
	if name == "" || name == "." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(u.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
