package responder

import (
	"github.com/hewenyu/zeroconf-agent/internal/core/model"
)

// Registration 表示一次已生效的服务注册句柄
type Registration interface {
	// ID 返回本次注册的唯一标识，用于日志和状态上报
	ID() string

	// Shutdown 撤销本次注册并释放底层资源
	Shutdown()
}

// Responder 定义mDNS应答器能力
// 监督器通过该接口持有会话，测试时可注入记录调用的假实现
type Responder interface {
	// Register 在本地网络上发布服务记录
	Register(adv *model.ServiceAdvertisement) (Registration, error)

	// Close 关闭应答器会话
	Close() error
}
