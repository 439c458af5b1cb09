package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EVFleetLink/EVFleetLink/internal/common/config"
	"github.com/EVFleetLink/EVFleetLink/internal/common/discovery"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/EVFleetLink/EVFleetLink/internal/common/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RegisterFunc 用于挂载业务路由。
type RegisterFunc func(r chi.Router)

type RunOptions struct {
	ShutdownTimeout time.Duration
	RateLimit       middleware.RateLimiter // 为 nil 时不限流
}

func defaultRunOptions() RunOptions {
	return RunOptions{
		ShutdownTimeout: 5 * time.Second,
	}
}

// NewRouter 构建统一的路由骨架（middleware 链按顺序执行）：
// - Recovery：异常恢复，避免服务崩溃
// - Tracing：链路追踪
// - AccessLog：访问日志
// - RateLimit / JWTAuth / RBAC：按配置启用
// - /healthz：供 Consul HTTP check 探测
func NewRouter(cfg *config.Config, log logger.Logger, opts RunOptions) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recovery(log))
	r.Use(Tracing(cfg.Server.Name))
	r.Use(AccessLog(log))
	if opts.RateLimit != nil {
		r.Use(RateLimit(opts.RateLimit))
	}
	r.Use(JWTAuth(cfg.Auth, log))
	r.Use(RBAC(cfg.Auth))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// RunHTTPServer 统一的 HTTP 服务启动模板：
// - 构建路由（含 middleware 链与 /healthz）
// - 注册业务路由
// - 注册到 Consul（HTTP check）
// - 优雅退出
func RunHTTPServer(cfg *config.Config, log logger.Logger, register RegisterFunc, opts ...func(*RunOptions)) error {
	if cfg == nil {
		return fmt.Errorf("cfg is nil")
	}
	if log == nil {
		return fmt.Errorf("log is nil")
	}

	o := defaultRunOptions()
	for _, apply := range opts {
		if apply != nil {
			apply(&o)
		}
	}

	// 初始化 Consul 客户端（失败不阻塞服务启动）
	consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
	if err != nil {
		log.Warnf("failed to connect to Consul: %v", err)
		consulClient = nil
	}

	router := NewRouter(cfg, log, o)
	if register != nil {
		register(router)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 注册到 Consul（成功才 defer 注销）
	if consulClient != nil {
		serviceID := fmt.Sprintf("%s-%s", cfg.Server.Name, uuid.New().String())
		registry := discovery.NewServiceRegistry(
			consulClient,
			serviceID,
			cfg.Server.Name,
			cfg.Server.Host,
			cfg.Server.Port,
			[]string{"http"},
		)
		if err := registry.Register(); err != nil {
			log.Warnf("failed to register service to Consul: %v", err)
		} else {
			log.Infof("Service registered to Consul: %s", serviceID)
			defer func() {
				if err := registry.Deregister(); err != nil {
					log.Warnf("failed to deregister service from Consul: %v", err)
				}
			}()
		}
	}

	log.Infof("%s starting on %s:%d", cfg.Server.Name, cfg.Server.Host, cfg.Server.Port)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %v, shutting down...", sig)
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http serve failed: %w", err)
		}
		return nil
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown timeout, forcing close: %v", err)
		_ = srv.Close()
	} else {
		log.Info("http server stopped gracefully")
	}

	return nil
}

// WithShutdownTimeout 修改优雅退出等待时间。
func WithShutdownTimeout(d time.Duration) func(*RunOptions) {
	return func(o *RunOptions) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}

// WithRateLimit 启用全局限流。
func WithRateLimit(l middleware.RateLimiter) func(*RunOptions) {
	return func(o *RunOptions) {
		o.RateLimit = l
	}
}
