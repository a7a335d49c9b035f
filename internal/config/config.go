package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// 保存先の種類
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret  string        // JWT署名シークレット
	SessionTTL time.Duration // セッションとアクセストークンの有効期限（固定）

	RedisURL string // セッション・カート・カウンタ

	// postgres: 全部GORM / firestore: カートと操作ログをFirestore
	StoreBackend             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	UserDataDir string // データロガーの保存先

	SendGridAPIKey string
	MailFrom       string
	MailTo         string // 受け取り側（空ならログだけ）

	AuthRateLimit float64 // /auth の1秒あたりリクエスト数

	GoEnv    string // dev/prod
	FEURL    string // フロントURL（CORS）
	LogLevel string
}

// Loadは環境変数
func Load() (Config, error) {
	sessionTTL, err := durationOr("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	rate, err := floatOr("AUTH_RATE_LIMIT", 5)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: sessionTTL,

		RedisURL: os.Getenv("REDIS_URL"),

		StoreBackend:             getenv("STORE_BACKEND", BackendPostgres),
		FirestoreProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		UserDataDir: getenv("USER_DATA_DIR", "./data"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		MailTo:         os.Getenv("MAIL_TO"),

		AuthRateLimit: rate,

		GoEnv:    getenv("GO_ENV", "dev"),
		FEURL:    getenv("FE_URL", "http://localhost:3000"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}

	switch cfg.StoreBackend {
	case BackendPostgres:
	case BackendFirestore:
		if cfg.FirestoreProjectID == "" {
			return Config{}, fmt.Errorf("FIRESTORE_PROJECT_ID is required when STORE_BACKEND=firestore")
		}
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be %s or %s", BackendPostgres, BackendFirestore)
	}

	//APIキーがあれば送信元も必須
	if cfg.SendGridAPIKey != "" && cfg.MailFrom == "" {
		return Config{}, fmt.Errorf("MAIL_FROM is required when SENDGRID_API_KEY is set")
	}

	return cfg, nil
}

// 本番だけSecure cookie
func (c Config) CookieSecure() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func floatOr(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}
