package status

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hewenyu/zeroconf-agent/internal/config"
	"github.com/hewenyu/zeroconf-agent/internal/core/model"
	"github.com/hewenyu/zeroconf-agent/internal/supervisor"
)

// Server 表示状态API服务
// 只读的观测接口，不影响刷新循环本身
type Server struct {
	e      *echo.Echo
	host   string
	port   int
	sup    supervisor.Supervisor
	adv    *model.ServiceAdvertisement
	logger config.Logger
}

// NewServer 创建一个新的状态API服务
func NewServer(cfg *config.Config, sup supervisor.Supervisor, adv *model.ServiceAdvertisement, logger config.Logger) *Server {
	// 创建Echo实例
	e := echo.New()
	e.HideBanner = true

	// 添加中间件
	e.Use(middleware.Recover())

	server := &Server{
		e:      e,
		host:   cfg.Status.ListenAddress,
		port:   cfg.Status.Port,
		sup:    sup,
		adv:    adv,
		logger: logger,
	}

	// 注册路由
	e.GET("/health", server.handleHealth)
	e.GET("/status", server.handleStatus)

	return server
}

// Start 以非阻塞方式启动服务
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.logger.Info("状态API服务启动", zap.String("addr", addr))

	go func() {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Error("状态API服务异常退出", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown 关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// handleHealth 处理健康检查请求
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "zeroconf-agent",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleStatus 返回监督器状态快照和当前发布的服务记录
func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"supervisor":    s.sup.Status(),
		"advertisement": s.adv,
	})
}
