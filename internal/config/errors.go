package config

import "fmt"

// ConfigError 表示配置加载或校验失败
// 属于致命错误：进程必须在任何网络行为发生之前以非零状态退出
type ConfigError struct {
	Path string // 配置文件路径，自动查找时可能为空
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("配置错误 (%s): %v", e.Path, e.Err)
	}
	return fmt.Sprintf("配置错误: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
