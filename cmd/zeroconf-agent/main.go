package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/zeroconf-agent/internal/config"
	"github.com/hewenyu/zeroconf-agent/internal/responder"
	"github.com/hewenyu/zeroconf-agent/internal/status"
	"github.com/hewenyu/zeroconf-agent/internal/supervisor"
)

var configFile string

func init() {
	// 解析命令行参数
	flag.StringVar(&configFile, "config", "", "配置文件路径")
}

func main() {
	flag.Parse()

	// 加载配置；配置错误在任何网络行为之前以非零状态退出
	appConfig, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger, err := config.NewLogger(appConfig.Log.Level, appConfig.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	adv := appConfig.Advertisement()

	// 打印启动信息
	logger.Info("Zeroconf Agent Starting...",
		zap.String("version", "0.1.0"),
		zap.String("service_type", adv.Type),
		zap.String("instance_name", adv.Name),
		zap.Int("port", adv.Port),
		zap.Duration("refresh_interval", adv.Interval),
	)

	// 监听终止信号以优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sup := supervisor.New(adv, responder.NewZeroconfResponder(logger), logger)

	// 按配置启动状态API
	if appConfig.Status.Enabled {
		statusServer := status.NewServer(appConfig, sup, adv, logger)
		if err := statusServer.Start(); err != nil {
			logger.Error("启动状态API失败", zap.Error(err))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := statusServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("关闭状态API失败", zap.Error(err))
			}
		}()
	}

	// 运行注册监督器直到收到终止信号
	if err := sup.Run(ctx); err != nil {
		logger.Error("注册监督器启动失败", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Zeroconf Agent已优雅退出")
}
