package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hewenyu/zeroconf-agent/internal/core/model"
)

// serviceKeys 是服务发布配置的五个字段
// 兼容旧版扁平格式的配置文件（字段直接位于顶层）
var serviceKeys = []string{"type", "name", "port", "properties", "interval"}

// Config 应用程序配置结构
type Config struct {
	// 服务发布配置
	Service struct {
		Type       string            `mapstructure:"type"`
		Name       string            `mapstructure:"name"`
		Port       int               `mapstructure:"port"`
		Properties map[string]string `mapstructure:"properties"`
		Interval   float64           `mapstructure:"interval"` // 刷新间隔，单位秒
	} `mapstructure:"service"`

	// 状态API配置
	Status struct {
		Enabled       bool   `mapstructure:"enabled"`
		ListenAddress string `mapstructure:"listen_address"`
		Port          int    `mapstructure:"port"`
	} `mapstructure:"status"`

	// 日志配置
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
}

// LoadConfig 从文件和环境变量加载配置并完成校验
// 配置缺失或任何不变量不满足都会在此失败，绝不带着残缺配置启动
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果指定了配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 设置配置文件名和路径
		v.SetConfigName("config")                       // 配置文件名（无扩展名）
		v.AddConfigPath(".")                            // 当前目录
		v.AddConfigPath("./configs")                    // configs目录
		v.AddConfigPath("$HOME/.config/zeroconf-agent") // 用户目录
		v.AddConfigPath("/etc/zeroconf-agent")          // 系统目录
	}

	// 配置文件格式
	v.SetConfigType("json")

	// 从配置文件加载；文件缺失同样视为致命的配置错误
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Path: configPath, Err: fmt.Errorf("读取配置文件错误: %w", err)}
	}

	// 兼容扁平格式：顶层的服务字段提升到service块下
	for _, key := range serviceKeys {
		if v.IsSet(key) && !v.IsSet("service."+key) {
			v.Set("service."+key, v.Get(key))
		}
	}

	// 绑定环境变量
	v.SetEnvPrefix("ZEROCONF_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 从环境变量覆盖
	bindEnvVariables(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &ConfigError{Path: v.ConfigFileUsed(), Err: fmt.Errorf("解析配置错误: %w", err)}
	}

	// 实例名称缺省时由主机名和服务类型推导
	if config.Service.Name == "" && config.Service.Type != "" {
		if hostname, err := os.Hostname(); err == nil {
			config.Service.Name = hostname + "." + config.Service.Type
		}
	}

	// 校验服务记录的不变量
	if err := config.Advertisement().Validate(); err != nil {
		return nil, &ConfigError{Path: v.ConfigFileUsed(), Err: err}
	}
	if config.Status.Enabled && (config.Status.Port < 1 || config.Status.Port > 65535) {
		return nil, &ConfigError{Path: v.ConfigFileUsed(), Err: fmt.Errorf("状态API端口必须在1-65535范围内: %d", config.Status.Port)}
	}

	return &config, nil
}

// Advertisement 由配置构造服务记录
func (c *Config) Advertisement() *model.ServiceAdvertisement {
	return &model.ServiceAdvertisement{
		Type:       c.Service.Type,
		Name:       c.Service.Name,
		Port:       c.Service.Port,
		Properties: c.Service.Properties,
		Interval:   time.Duration(c.Service.Interval * float64(time.Second)),
	}
}

// setDefaults 设置配置默认值
// 服务发布的五个字段没有默认值，必须由配置文件显式给出
func setDefaults(v *viper.Viper) {
	// 状态API默认配置
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.listen_address", "0.0.0.0")
	v.SetDefault("status.port", 8082)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", true)
}

// bindEnvVariables 绑定特定的环境变量
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("service.port", "ZEROCONF_AGENT_SERVICE_PORT")
	v.BindEnv("service.interval", "ZEROCONF_AGENT_SERVICE_INTERVAL")
	v.BindEnv("status.port", "ZEROCONF_AGENT_STATUS_PORT")
	v.BindEnv("log.level", "ZEROCONF_AGENT_LOG_LEVEL")
}

// GetDefaultConfigPath 返回默认配置文件路径
func GetDefaultConfigPath() string {
	// 按顺序检查不同位置的配置文件
	paths := []string{
		"./config.json",
		"./configs/config.json",
		os.Getenv("HOME") + "/.config/zeroconf-agent/config.json",
		"/etc/zeroconf-agent/config.json",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
