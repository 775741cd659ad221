package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 将配置内容写入临时文件并返回路径
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err, "写入测试配置文件失败")
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"service": {
			"type": "_http._tcp.local.",
			"name": "my-service._http._tcp.local.",
			"port": 8080,
			"properties": {"description": "My Zeroconf Service"},
			"interval": 60
		}
	}`)

	config, err := LoadConfig(path)
	require.NoError(t, err, "无法加载配置")
	require.NotNil(t, config, "配置不应为nil")

	// 验证服务字段与输入一致
	assert.Equal(t, "_http._tcp.local.", config.Service.Type)
	assert.Equal(t, "my-service._http._tcp.local.", config.Service.Name)
	assert.Equal(t, 8080, config.Service.Port)
	assert.Equal(t, map[string]string{"description": "My Zeroconf Service"}, config.Service.Properties)
	assert.Equal(t, float64(60), config.Service.Interval)

	// 验证默认值
	assert.False(t, config.Status.Enabled, "状态API默认关闭")
	assert.Equal(t, 8082, config.Status.Port, "状态API端口默认值")
	assert.Equal(t, "info", config.Log.Level, "日志级别默认值")
}

func TestLoadConfigFlatFormat(t *testing.T) {
	// 旧版扁平格式：服务字段直接位于顶层
	path := writeConfigFile(t, `{
		"type": "_http._tcp.local.",
		"name": "legacy._http._tcp.local.",
		"port": 9090,
		"properties": {},
		"interval": 1.5
	}`)

	config, err := LoadConfig(path)
	require.NoError(t, err, "扁平格式配置应能加载")

	assert.Equal(t, "_http._tcp.local.", config.Service.Type)
	assert.Equal(t, "legacy._http._tcp.local.", config.Service.Name)
	assert.Equal(t, 9090, config.Service.Port)
	assert.Equal(t, 1500*time.Millisecond, config.Advertisement().Interval, "小数秒应转换为对应时长")
}

func TestLoadConfigDefaultsName(t *testing.T) {
	// 实例名称缺省时由主机名和服务类型推导
	path := writeConfigFile(t, `{
		"service": {
			"type": "_http._tcp.local.",
			"port": 8080,
			"interval": 60
		}
	}`)

	config, err := LoadConfig(path)
	require.NoError(t, err, "缺省实例名称的配置应能加载")

	hostname, err := os.Hostname()
	require.NoError(t, err)
	assert.Equal(t, hostname+"._http._tcp.local.", config.Service.Name, "实例名称应由主机名推导")
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	path := writeConfigFile(t, `{
		"service": {
			"type": "_http._tcp.local.",
			"name": "my-service._http._tcp.local.",
			"port": 8080,
			"interval": 60
		}
	}`)

	// 设置环境变量
	os.Setenv("ZEROCONF_AGENT_SERVICE_PORT", "8443")
	os.Setenv("ZEROCONF_AGENT_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("ZEROCONF_AGENT_SERVICE_PORT")
		os.Unsetenv("ZEROCONF_AGENT_LOG_LEVEL")
	}()

	config, err := LoadConfig(path)
	require.NoError(t, err, "无法加载配置")

	// 验证环境变量覆盖
	assert.Equal(t, 8443, config.Service.Port, "环境变量应正确覆盖服务端口")
	assert.Equal(t, "debug", config.Log.Level, "环境变量应正确覆盖日志级别")

	// 确认其他值不受影响
	assert.Equal(t, "my-service._http._tcp.local.", config.Service.Name)
}

func TestLoadConfigWithMissingFile(t *testing.T) {
	// 尝试从不存在的文件加载配置
	config, err := LoadConfig(filepath.Join(t.TempDir(), "non_existent.json"))

	// 应该返回ConfigError
	require.Error(t, err, "从不存在的文件加载配置应该失败")
	assert.Nil(t, config, "加载失败时不应返回配置对象")

	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr), "错误类型应为ConfigError")
}

func TestLoadConfigWithMalformedJSON(t *testing.T) {
	path := writeConfigFile(t, `{"service": {`)

	config, err := LoadConfig(path)
	require.Error(t, err, "格式损坏的配置文件应该加载失败")
	assert.Nil(t, config)

	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr), "错误类型应为ConfigError")
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"端口为0",
			`{"service": {"type": "_http._tcp.local.", "name": "a._http._tcp.local.", "port": 0, "interval": 60}}`,
		},
		{
			"端口超出范围",
			`{"service": {"type": "_http._tcp.local.", "name": "a._http._tcp.local.", "port": 65536, "interval": 60}}`,
		},
		{
			"刷新间隔为0",
			`{"service": {"type": "_http._tcp.local.", "name": "a._http._tcp.local.", "port": 8080, "interval": 0}}`,
		},
		{
			"刷新间隔为负",
			`{"service": {"type": "_http._tcp.local.", "name": "a._http._tcp.local.", "port": 8080, "interval": -5}}`,
		},
		{
			"缺少服务类型",
			`{"service": {"name": "a._http._tcp.local.", "port": 8080, "interval": 60}}`,
		},
		{
			"服务类型缺少域名后缀",
			`{"service": {"type": "_http._tcp", "name": "a._http._tcp", "port": 8080, "interval": 60}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)

			config, err := LoadConfig(path)
			require.Error(t, err, "违反不变量的配置应该加载失败")
			assert.Nil(t, config)

			var configErr *ConfigError
			assert.True(t, errors.As(err, &configErr), "错误类型应为ConfigError")
		})
	}
}

func TestAdvertisement(t *testing.T) {
	path := writeConfigFile(t, `{
		"service": {
			"type": "_http._tcp.local.",
			"name": "my-service._http._tcp.local.",
			"port": 8080,
			"properties": {"description": "demo"},
			"interval": 60
		}
	}`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	adv := config.Advertisement()
	assert.Equal(t, "_http._tcp.local.", adv.Type)
	assert.Equal(t, "my-service._http._tcp.local.", adv.Name)
	assert.Equal(t, 8080, adv.Port)
	assert.Equal(t, 60*time.Second, adv.Interval)
	assert.NoError(t, adv.Validate(), "加载后的记录应已通过校验")
}
