package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"wsproxy_go/internal/config"
	"wsproxy_go/internal/server"
	"wsproxy_go/internal/shared/logger"
	"wsproxy_go/internal/telemetry"
)

const version = "0.1.0"

func main() {
	fs := pflag.NewFlagSet("wsproxy", pflag.ExitOnError)
	flags := config.NewFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if flags.Version {
		fmt.Printf("wsproxy_go %s\n", version)
		return
	}

	// 1. 加载配置
	cfg, err := config.Load(flags)
	if err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志系统
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	printBanner(os.Stdout, cfg, os.Getpid(), time.Now())
	if cfg.Secret != "" || cfg.AESOnly {
		logger.Warn().Msg("--secret and --aes-only are reserved; payloads are relayed unmodified")
	}

	// 3. 创建并运行服务器
	sink := telemetry.Multi{
		telemetry.NewLogSink(log.Logger),
		telemetry.NewMetrics(prometheus.DefaultRegisterer),
	}
	appServer := server.New(cfg, sink, prometheus.DefaultGatherer)
	if err := appServer.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start proxy")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	appServer.Stop(ctx)
}
