package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// LocalDomain 是mDNS的本地域名
	LocalDomain = "local."

	// LocalDomainSuffix 是服务类型必须携带的域名后缀
	LocalDomainSuffix = ".local."
)

// ServiceAdvertisement 表示一条待发布的mDNS服务记录
// 启动时从配置构造一次，之后只读不改
type ServiceAdvertisement struct {
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Port       int               `json:"port"`
	Properties map[string]string `json:"properties,omitempty"`
	Interval   time.Duration     `json:"interval"`
}

// Validate 校验服务记录的各项不变量
// 任何一项不满足都必须在产生网络行为之前失败
func (a *ServiceAdvertisement) Validate() error {
	if a.Type == "" {
		return fmt.Errorf("服务类型(service.type)不能为空")
	}
	if !strings.HasSuffix(a.Type, LocalDomainSuffix) {
		return fmt.Errorf("服务类型必须以 %s 结尾: %q", LocalDomainSuffix, a.Type)
	}
	if a.Name == "" {
		return fmt.Errorf("实例名称(service.name)不能为空")
	}
	if a.Port < 1 || a.Port > 65535 {
		return fmt.Errorf("端口必须在1-65535范围内: %d", a.Port)
	}
	if a.Interval <= 0 {
		return fmt.Errorf("刷新间隔(service.interval)必须大于0")
	}
	return nil
}

// ServiceLabel 返回去掉域名后缀的服务类型标签，例如 "_http._tcp"
func (a *ServiceAdvertisement) ServiceLabel() string {
	return strings.TrimSuffix(strings.TrimSuffix(a.Type, LocalDomainSuffix), ".")
}

// InstanceLabel 返回实例名称中去掉服务类型后缀的唯一标签
// 按约定实例名称以服务类型结尾；不满足约定时退化为去掉末尾点号的完整名称
func (a *ServiceAdvertisement) InstanceLabel() string {
	instance := strings.TrimSuffix(a.Name, "."+a.Type)
	if instance == a.Name {
		instance = strings.TrimSuffix(a.Name, a.Type)
	}
	return strings.TrimSuffix(instance, ".")
}

// TXTRecords 将属性表转换为mDNS TXT记录的 "key=value" 形式
// 排序以保证每次刷新发布的记录内容稳定
func (a *ServiceAdvertisement) TXTRecords() []string {
	if len(a.Properties) == 0 {
		return nil
	}

	records := make([]string, 0, len(a.Properties))
	for k, v := range a.Properties {
		records = append(records, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(records)
	return records
}
