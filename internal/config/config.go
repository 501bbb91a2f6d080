package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/production

	UploadDir     string // 画像の保存先ディレクトリ
	UploadBaseURL string // 保存した画像の公開URLのベース（/uploads）

	// DB接続。DatabaseURLがあれば優先、無ければ個別項目からDSNを組む。
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: getenv("GO_ENV", "dev"),

		UploadDir:     getenv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getenv("UPLOAD_BASE_URL", "/uploads"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getenv("POSTGRES_HOST", "localhost"),
		DBPort:      getenv("POSTGRES_PORT", "5432"),
		DBUser:      getenv("POSTGRES_USER", "postgres"),
		DBPassword:  getenv("POSTGRES_PASSWORD", "postgres"),
		DBName:      getenv("POSTGRES_DB", "shop"),
		DBSSLMode:   getenv("POSTGRES_SSLMODE", "disable"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
