package responder

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/hewenyu/zeroconf-agent/internal/config"
	"github.com/hewenyu/zeroconf-agent/internal/core/model"
)

// zeroconfResponder 基于grandcat/zeroconf实现Responder接口
// mDNS报文构造、组播监听和冲突处理全部由该库完成
type zeroconfResponder struct {
	logger config.Logger
}

// NewZeroconfResponder 创建一个新的mDNS应答器
func NewZeroconfResponder(logger config.Logger) Responder {
	return &zeroconfResponder{
		logger: logger,
	}
}

// Register 在所有可用网络接口上发布服务记录
func (r *zeroconfResponder) Register(adv *model.ServiceAdvertisement) (Registration, error) {
	server, err := zeroconf.Register(
		adv.InstanceLabel(),
		adv.ServiceLabel(),
		model.LocalDomain,
		adv.Port,
		adv.TXTRecords(),
		nil, // nil表示所有网络接口
	)
	if err != nil {
		return nil, fmt.Errorf("注册mDNS服务失败: %w", err)
	}

	registration := &zeroconfRegistration{
		id:     uuid.NewString(),
		server: server,
	}

	r.logger.Debug("mDNS服务记录已发布",
		zap.String("registration_id", registration.id),
		zap.String("instance", adv.InstanceLabel()),
		zap.String("service", adv.ServiceLabel()),
		zap.Int("port", adv.Port),
	)

	return registration, nil
}

// Close 关闭应答器会话
// zeroconf以单次注册为会话单位，注册句柄释放后无额外资源需要清理
func (r *zeroconfResponder) Close() error {
	return nil
}

// zeroconfRegistration 包装zeroconf.Server作为注册句柄
type zeroconfRegistration struct {
	id     string
	server *zeroconf.Server
}

func (z *zeroconfRegistration) ID() string {
	return z.id
}

func (z *zeroconfRegistration) Shutdown() {
	z.server.Shutdown()
}
