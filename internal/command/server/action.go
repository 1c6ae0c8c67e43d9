package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/command"
	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
	"github.com/lwmacct/261019-go-pkg-interp/internal/render"
	"github.com/lwmacct/261019-go-pkg-interp/internal/version"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/cfgm"
)

func action(ctx context.Context, cmd *cli.Command) error {
	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	cfg := cfgm.MustLoadCmd(cmd, config.DefaultConfig(), version.AppRawName,
		cfgm.WithEnvPrefix(command.EnvPrefix),
	)

	r, err := render.New(cfg.Render)
	if err != nil {
		return fmt.Errorf("load value sources: %w", err)
	}
	defer func() { _ = r.Close() }()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      NewHandler(cfg.Server, r),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  cfg.Server.Idletime,
	}

	// 启动服务器（非阻塞）
	go func() {
		slog.Info("Server starting", "addr", cfg.Server.Addr, "version", version.GetVersion())
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down")

	// 使用 WithoutCancel 保持 context 链，同时防止父 context 取消影响 shutdown
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.Timeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("Server shutdown failed", "error", err)

		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("Server stopped gracefully")

	return nil
}
