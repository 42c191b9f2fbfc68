// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Image     ImageConfig     `mapstructure:"image"`
	Video     VideoConfig     `mapstructure:"video"`
	Replicate ReplicateConfig `mapstructure:"replicate"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// HTTPTimeoutSeconds 是所有外部 API 调用共用的 http.Client 超时。
	HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// StoreConfig 选择会话存储驱动：memory | redis | mysql。
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。Secret 为空时不启用身份识别中间件。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	Provider   string              `mapstructure:"provider"` // openai | gemini
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	Title      LLMGenerationConfig `mapstructure:"title"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ImageConfig 存储图像生成（DALL-E）相关的配置。
type ImageConfig struct {
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	Quality       string `mapstructure:"quality"`
}

// VideoConfig 存储 Runway 视频生成相关的配置。
type VideoConfig struct {
	RunwayAPIKey  string `mapstructure:"runway_api_key"`
	RunwayBaseURL string `mapstructure:"runway_base_url"`
	RunwayModel   string `mapstructure:"runway_model"`
	// StatusCacheMinutes 控制已完成视频任务结果的缓存时间。
	StatusCacheMinutes int `mapstructure:"status_cache_minutes"`
}

// ReplicateConfig 存储 Replicate 相关的配置（Stable Diffusion 与视频模型共用）。
type ReplicateConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageVersion string `mapstructure:"image_version"`
	VideoVersion string `mapstructure:"video_version"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	URLExpiryHours  int    `mapstructure:"url_expiry_hours"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时不发布事件。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.http_timeout_seconds", 120)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.generation.temperature", 0.7)
	v.SetDefault("llm.generation.max_tokens", 1000)
	v.SetDefault("llm.title.temperature", 0.5)
	v.SetDefault("llm.title.max_tokens", 20)
	v.SetDefault("image.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("image.quality", "hd")
	v.SetDefault("video.runway_base_url", "https://api.runwayml.com/v1")
	v.SetDefault("video.runway_model", "gen4_turbo")
	v.SetDefault("video.status_cache_minutes", 60)
	v.SetDefault("replicate.base_url", "https://api.replicate.com/v1")
	v.SetDefault("replicate.image_version", "ac732df83cea7fff18b8472768c88ad041fa750ff7682a21affe81863cbe77e4")
	v.SetDefault("replicate.video_version", "9f747673945c62801b13b84701c783929c0ee784e4748ec062204894dda1a351")
	v.SetDefault("minio.bucket_name", "chat-media")
	v.SetDefault("minio.url_expiry_hours", 24)
	v.SetDefault("kafka.topic", "chat-events")

	// 只有 viper 已知的键才会被环境变量覆盖，密钥类配置需要显式注册
	for _, key := range []string{
		"llm.api_key", "image.openai_api_key", "video.runway_api_key", "replicate.api_key",
		"jwt.secret", "database.mysql.dsn", "database.redis.addr", "database.redis.password",
		"minio.access_key_id", "minio.secret_access_key", "kafka.brokers",
	} {
		v.SetDefault(key, "")
	}
}

// Load 从指定路径读取 YAML 配置，叠加 .env 与环境变量（例如 LLM_API_KEY 覆盖 llm.api_key）。
func Load(configPath string) (Config, error) {
	// .env 文件不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
