package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Mail     MailConfig     `mapstructure:"mail"`
	Track    TrackConfig    `mapstructure:"track"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
}

type AppConfig struct {
	Mode          string `mapstructure:"mode"` // development | production
	LogLevel      string `mapstructure:"log_level"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	StorefrontPath string `mapstructure:"storefront_path"` // 前台店铺页前缀，默认 /loja
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"` // 反向代理 CIDR，埋点限流据此取客户端 IP
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent | error | warn | info
	Partitioned     bool          `mapstructure:"partitioned"`
	FutureMonths    int           `mapstructure:"future_months"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"` // 为空则使用进程内缓存
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type StorageConfig struct {
	Provider  string `mapstructure:"provider"` // s3 | local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	CDNDomain string `mapstructure:"cdn_domain"`
	BasePath  string `mapstructure:"base_path"`
	LocalDir  string `mapstructure:"local_dir"` // provider=local 时的落盘目录
	MaxBytes  int64  `mapstructure:"max_bytes"`
}

type MailConfig struct {
	Provider string        `mapstructure:"provider"` // log | http
	APIURL   string        `mapstructure:"api_url"`
	APIKey   string        `mapstructure:"api_key"`
	From     string        `mapstructure:"from"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

type TrackConfig struct {
	RateLimit string `mapstructure:"rate_limit"` // ulule 格式，如 "120-M"
}

type TasksConfig struct {
	PartitionCron    string `mapstructure:"partition_cron"`
	TokenCleanupCron string `mapstructure:"token_cleanup_cron"`
}

// 环境变量别名，兼容部署脚本里的扁平变量名
var envAliases = map[string]string{
	"database.dsn":        "DATABASE_DSN",
	"server.port":         "SERVER_PORT",
	"jwt.secret":          "JWT_SECRET",
	"redis.url":           "REDIS_URL",
	"storage.provider":    "STORAGE_PROVIDER",
	"storage.bucket":      "AWS_BUCKET",
	"storage.region":      "AWS_REGION",
	"storage.access_key":  "AWS_ACCESS_KEY_ID",
	"storage.secret_key":  "AWS_SECRET_ACCESS_KEY",
	"storage.cdn_domain":  "AWS_CDN_DOMAIN",
	"storage.endpoint":    "AWS_ENDPOINT_URL",
	"mail.api_url":        "MAIL_API_URL",
	"mail.api_key":        "MAIL_API_KEY",
	"mail.provider":       "MAIL_PROVIDER",
	"app.public_base_url": "PUBLIC_BASE_URL",
	"app.mode":            "APP_MODE",
	"track.rate_limit":    "TRACK_RATE_LIMIT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "")
	v.SetDefault("app.public_base_url", "http://localhost:8080")
	v.SetDefault("app.storefront_path", "/loja")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.dsn", "host=localhost user=storefront password=storefront dbname=storefront port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.partitioned", true)
	v.SetDefault("database.future_months", 3)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.cache_ttl", 5*time.Minute)

	v.SetDefault("jwt.secret", "storefront-secret-key-change-in-production")
	v.SetDefault("jwt.issuer", "storefront")
	v.SetDefault("jwt.access_token_ttl", 30*24*time.Hour)
	v.SetDefault("jwt.refresh_token_ttl", 90*24*time.Hour)

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.base_path", "storefront")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.max_bytes", 2<<20)

	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.from", "no-reply@storefront.local")
	v.SetDefault("mail.token_ttl", 24*time.Hour)
	v.SetDefault("mail.cooldown", time.Minute)

	v.SetDefault("track.rate_limit", "120-M")

	v.SetDefault("tasks.partition_cron", "0 30 3 * * *")
	v.SetDefault("tasks.token_cleanup_cron", "0 0 * * * *")
}

// Load 加载配置：默认值 -> 配置文件（可选） -> 环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && path != "" {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 基本校验
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn 不能为空")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret 不能为空")
	}
	if c.Storage.Provider != "s3" && c.Storage.Provider != "local" {
		return fmt.Errorf("不支持的存储提供者: %s", c.Storage.Provider)
	}
	if c.Mail.Provider != "log" && c.Mail.Provider != "http" {
		return fmt.Errorf("不支持的邮件提供者: %s", c.Mail.Provider)
	}
	return nil
}

// IsProduction 是否生产模式
func (c *Config) IsProduction() bool {
	return c.App.Mode == "production"
}
