// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（JWT 密钥、管理员初始密码）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Salary   SalaryConfig   `yaml:"salary"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

type RedisConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DB      int    `yaml:"db"`
	Enabled bool   `yaml:"enabled"`
}

// AuthConfig 认证配置（密钥从环境变量注入，不进 YAML）
type AuthConfig struct {
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
}

// SalaryConfig 薪资定时任务配置
type SalaryConfig struct {
	Schedule string `yaml:"schedule"`
	Enabled  bool   `yaml:"enabled"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	MongoURI       string
	MongoDatabase  string
	RedisURL       string
	RedisEnabled   bool
	APIPort        string
	JWTSecret      string
	AccessTokenTTL time.Duration
	SalarySchedule string
	SalaryEnabled  bool

	// 管理员引导账号（首次启动时创建）
	AdminEmail    string
	AdminPassword string
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置，环境变量优先
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	cfg := &Config{
		Env:            env,
		MongoURI:       getEnv("MONGO_URI", buildMongoURI(yamlCfg.Database)),
		MongoDatabase:  getEnv("MONGO_DATABASE", yamlCfg.Database.Name),
		RedisURL:       getEnv("REDIS_URL", buildRedisURL(yamlCfg.Redis)),
		RedisEnabled:   yamlCfg.Redis.Enabled,
		APIPort:        getEnv("API_PORT", yamlCfg.Server.Port),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: yamlCfg.Auth.AccessTokenTTL,
		SalarySchedule: getEnv("SALARY_SCHEDULE", yamlCfg.Salary.Schedule),
		SalaryEnabled:  yamlCfg.Salary.Enabled,
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@skillshare.local"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
	}

	cfg.validate()
	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Host: "localhost", Port: 27017, Name: "skillshare"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, DB: 0, Enabled: false},
		Auth:     AuthConfig{AccessTokenTTL: time.Hour},
		Salary:   SalaryConfig{Schedule: "59 23 30 * *", Enabled: true},
	}

	// 2. 加载 common.yaml（公共配置）
	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	// 3. 加载 {env}.yaml（环境特定配置，覆盖公共配置）
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildMongoURI 构建 MongoDB 连接字符串
func buildMongoURI(db DatabaseConfig) string {
	return fmt.Sprintf("mongodb://%s:%d", db.Host, db.Port)
}

// buildRedisURL 构建 Redis 连接字符串
func buildRedisURL(redis RedisConfig) string {
	return fmt.Sprintf("redis://%s:%d/%d", redis.Host, redis.Port, redis.DB)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏凭据）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Mongo: %s/%s, Redis: %s(enabled=%v), Port: %s}",
		c.Env, maskPassword(c.MongoURI), c.MongoDatabase, c.RedisURL, c.RedisEnabled, c.APIPort)
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}

// validate 验证并填充默认值
func (c *Config) validate() {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = time.Hour
	}
	if c.SalarySchedule == "" {
		c.SalarySchedule = "59 23 30 * *"
	}
	if c.JWTSecret == "" && c.Env != EnvProduction {
		// 仅限非生产环境的兜底密钥，生产必须显式配置
		c.JWTSecret = "dev-insecure-secret"
	}
}
