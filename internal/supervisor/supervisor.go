package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/zeroconf-agent/internal/config"
	"github.com/hewenyu/zeroconf-agent/internal/core/model"
	"github.com/hewenyu/zeroconf-agent/internal/responder"
)

// Supervisor 定义注册监督器接口
// 负责服务记录在网络上存在的完整生命周期
type Supervisor interface {
	// Run 执行首次注册并进入周期刷新循环，直到ctx被取消
	// 首次注册失败返回错误（致命）；正常关闭返回nil
	Run(ctx context.Context) error

	// Status 返回当前状态快照
	Status() Status
}

// Status 表示监督器的状态快照
type Status struct {
	State               model.AgentState `json:"state"`
	Registered          bool             `json:"registered"`
	RegistrationID      string           `json:"registration_id,omitempty"`
	RefreshCount        int              `json:"refresh_count"`
	ConsecutiveFailures int              `json:"consecutive_failures"`
	StartedAt           time.Time        `json:"started_at,omitempty"`
	LastRefreshAt       time.Time        `json:"last_refresh_at,omitempty"`
}

// supervisor 实现Supervisor接口
// 刷新循环严格串行：等待 → 刷新 → 等待，任何时刻最多持有一个注册句柄
type supervisor struct {
	adv       *model.ServiceAdvertisement
	responder responder.Responder
	logger    config.Logger

	mu                  sync.RWMutex
	state               model.AgentState
	current             responder.Registration // nil表示当前未注册
	refreshCount        int
	consecutiveFailures int
	startedAt           time.Time
	lastRefreshAt       time.Time
}

// New 创建一个新的注册监督器
func New(adv *model.ServiceAdvertisement, r responder.Responder, logger config.Logger) Supervisor {
	return &supervisor{
		adv:       adv,
		responder: r,
		logger:    logger,
		state:     model.StateStarting,
	}
}

// Run 执行首次注册并进入周期刷新循环
func (s *supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	s.state = model.StateStarting
	s.startedAt = time.Now()
	s.mu.Unlock()

	// 首次注册失败是致命错误，不允许在未注册状态下假装健康地进入循环
	registration, err := s.responder.Register(s.adv)
	if err != nil {
		s.setState(model.StateStopped)
		return fmt.Errorf("初始注册失败: %w", err)
	}
	s.setRegistration(registration)
	s.setState(model.StateRegistered)

	s.logger.Info("服务注册成功",
		zap.String("name", s.adv.Name),
		zap.String("type", s.adv.Type),
		zap.Int("port", s.adv.Port),
		zap.String("registration_id", registration.ID()),
		zap.Duration("interval", s.adv.Interval),
	)

	ticker := time.NewTicker(s.adv.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-ticker.C:
			s.refresh()
		}
	}
}

// refresh 执行一次刷新：先撤销当前记录，再重新发布等价记录
// 先撤后发，避免同名记录在网络上同时存在两份
func (s *supervisor) refresh() {
	s.setState(model.StateRefreshing)
	s.logger.Info("刷新服务注册", zap.String("name", s.adv.Name))

	if current := s.registration(); current != nil {
		current.Shutdown()
		s.setRegistration(nil)
	}

	registration, err := s.responder.Register(s.adv)
	if err != nil {
		// 刷新失败不致命，刷新间隔本身就是重试周期
		s.mu.Lock()
		s.consecutiveFailures++
		failures := s.consecutiveFailures
		s.state = model.StateRegistered
		s.mu.Unlock()

		s.logger.Warn("刷新注册失败，等待下一周期重试",
			zap.Error(err),
			zap.Int("consecutive_failures", failures),
		)
		return
	}

	s.mu.Lock()
	s.current = registration
	s.refreshCount++
	s.consecutiveFailures = 0
	s.lastRefreshAt = time.Now()
	s.state = model.StateRegistered
	s.mu.Unlock()

	s.logger.Debug("服务注册已刷新",
		zap.String("registration_id", registration.ID()),
		zap.Int("refresh_count", s.Status().RefreshCount),
	)
}

// shutdown 注销服务并关闭应答器会话
// 清理过程尽力而为，失败只记录日志，不阻碍进程正常退出
func (s *supervisor) shutdown() {
	s.setState(model.StateUnregistering)
	s.logger.Info("收到终止请求，正在注销服务...", zap.String("name", s.adv.Name))

	if current := s.registration(); current != nil {
		current.Shutdown()
		s.setRegistration(nil)
	}

	if err := s.responder.Close(); err != nil {
		s.logger.Error("关闭mDNS应答器失败", zap.Error(err))
	}

	s.setState(model.StateStopped)
	s.logger.Info("服务已停止")
}

// Status 返回当前状态快照
func (s *supervisor) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		State:               s.state,
		Registered:          s.current != nil,
		RefreshCount:        s.refreshCount,
		ConsecutiveFailures: s.consecutiveFailures,
		StartedAt:           s.startedAt,
		LastRefreshAt:       s.lastRefreshAt,
	}
	if s.current != nil {
		status.RegistrationID = s.current.ID()
	}
	return status
}

func (s *supervisor) setState(state model.AgentState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *supervisor) registration() responder.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *supervisor) setRegistration(r responder.Registration) {
	s.mu.Lock()
	s.current = r
	s.mu.Unlock()
}
