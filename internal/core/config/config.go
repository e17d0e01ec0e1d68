package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level string
	JSON  bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Auth struct {
	BcryptCost int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheSec int    `mapstructure:"cachesec"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	Auth  Auth
	DB    DB
	Redis Redis `mapstructure:"redis"`
}

// Load 读取配置：yaml 可选，环境变量（APP_ 前缀）覆盖，缺省值兜底
func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "sweetshop")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	// 空默认值也要注册，否则 AutomaticEnv 的键不会进入 Unmarshal
	v.SetDefault("jwt.secret", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.issuer", "sweetshop")
	v.SetDefault("jwt.accesstokenttlmin", 60)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.maxopenconns", 50)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("redis.cachesec", 30)

	// 配置文件可以不存在，纯环境变量部署也要能跑
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			log.Fatalf("read config: %v", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}

// Validate 启动期校验：签名密钥/DSN 缺失属于致命配置错误，拒绝起服务
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret is not set (APP_JWT_SECRET)")
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("db.dsn is not set (APP_DB_DSN)")
	}
	return nil
}
