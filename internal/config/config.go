package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // 接続文字列。空なら POSTGRES_* から組み立てる
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTSecret string        // JWT署名シークレット
	JWTTTL    time.Duration // アクセストークンの有効期限（1h）

	MidtransServerKey string        // 署名検証とBasic認証に使う
	MidtransBaseURL   string        // Snap API（sandbox）
	GatewayTimeout    time.Duration // Snap API のタイムアウト

	RedisURL string        // 空ならロックなし
	LockTTL  time.Duration // 注文ロックの有効期限

	KafkaBrokers   []string      // 空ならoutbox relayを起動しない
	OutboxInterval time.Duration // relay の周期

	GoEnv       string // dev/prod
	FrontendURL string // フロントURL（CORS）
}

// Loadは .env（あれば）と環境変数から読む
func Load(envFiles ...string) (Config, error) {
	// .env が無いのは本番では普通なので無視
	_ = godotenv.Load(envFiles...)

	pgPort, err := intOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	jwtTTL, err := durationOr("JWT_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	gatewayTimeout, err := durationOr("GATEWAY_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	lockTTL, err := durationOr("LOCK_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	outboxInterval, err := durationOr("OUTBOX_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: stringOr("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     stringOr("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    jwtTTL,

		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransBaseURL:   stringOr("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
		GatewayTimeout:    gatewayTimeout,

		RedisURL: os.Getenv("REDIS_URL"),
		LockTTL:  lockTTL,

		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		OutboxInterval: outboxInterval,

		GoEnv:       stringOr("GO_ENV", "dev"),
		FrontendURL: stringOr("FRONTEND_URL", "http://localhost:3000"),
	}

	//必須チェック
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("DATABASE_URL or POSTGRES_USER is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("DATABASE_URL or POSTGRES_DB is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MidtransServerKey == "" {
		return Config{}, fmt.Errorf("MIDTRANS_SERVER_KEY is required")
	}

	return cfg, nil
}

// DSN は gorm に渡す接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Addr は echo.Start に渡す
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func stringOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
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

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
