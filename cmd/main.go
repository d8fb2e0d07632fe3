package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/appicon/icon-generator/internal/api"
	"github.com/appicon/icon-generator/internal/batch"
	"github.com/appicon/icon-generator/internal/configure"
	"github.com/appicon/icon-generator/internal/global"
	"github.com/appicon/icon-generator/internal/health"
	"github.com/appicon/icon-generator/internal/icon_processor"
	"github.com/appicon/icon-generator/internal/monitoring"
	"github.com/appicon/icon-generator/internal/svc/kubemq"
	"github.com/appicon/icon-generator/internal/svc/prometheus"
	"github.com/appicon/icon-generator/internal/svc/s3"
	"github.com/bugsnag/panicwrap"
	"go.uber.org/zap"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

func init() {
	debug.SetGCPercent(2000)
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}
}

func main() {
	config := configure.New()

	if config.Mode == configure.ModeGenerate {
		if _, err := batch.Generate(config.Generate.Input, config.Generate.Output, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate icons: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		zap.S().Error("panic: ", s)
	})
	if err != nil {
		zap.S().Errorw("failed to setup panic handler: ",
			"error", err,
		)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		zap.S().Info("App Icon Generator")
		zap.S().Infof("Version: %s", Version)
		zap.S().Infof("build.Time: %s", Time)
		zap.S().Infof("build.User: %s", User)
		zap.S().Infof("Mode: %s", config.Mode)
	}

	zap.S().Debug("MaxProcs: ", runtime.GOMAXPROCS(0))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))

	gCtx.Inst().Prometheus = prometheus.New(prometheus.Options{
		Labels: config.Monitoring.Labels.ToPrometheus(),
	})
	gCtx.Inst().Prometheus.Register(gCtx.Inst().Prometheus.Registry())

	wg := sync.WaitGroup{}

	switch config.Mode {
	case configure.ModeAPI:
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-api.New(gCtx)
		}()
	case configure.ModeWorker:
		setupWorker(gCtx)
	default:
		zap.S().Fatalw("unknown mode",
			"mode", config.Mode,
		)
	}

	if gCtx.Config().Health.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-health.New(gCtx)
		}()
	}
	if gCtx.Config().Monitoring.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-monitoring.New(gCtx)
		}()
	}

	done := make(chan struct{})
	go func() {
		<-sig
		cancel()
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			zap.S().Fatal("force shutdown")
		}()

		zap.S().Info("shutting down")

		wg.Wait()

		close(done)
	}()

	zap.S().Info("running")

	<-done

	zap.S().Info("shutdown")
	os.Exit(0)
}

func setupWorker(gCtx global.Context) {
	var err error

	cfg := gCtx.Config()

	gCtx.Inst().S3, err = s3.New(gCtx, s3.Options{
		Region:      cfg.S3.Region,
		Endpoint:    cfg.S3.Endpoint,
		AccessToken: cfg.S3.AccessToken,
		SecretKey:   cfg.S3.SecretKey,
	})
	if err != nil {
		zap.S().Fatalw("failed to setup s3",
			"error", err,
		)
	}

	gCtx.Inst().KubeMQ, err = kubemq.New(gCtx, kubemq.Options{
		Host:      cfg.KubeMQ.Host,
		Port:      cfg.KubeMQ.Port,
		ClientID:  cfg.KubeMQ.ClientID,
		AuthToken: cfg.KubeMQ.AuthToken,

		WaitSeconds:       cfg.KubeMQ.WaitSeconds,
		VisibilitySeconds: cfg.KubeMQ.VisibilitySeconds,
	})
	if err != nil {
		zap.S().Fatalw("failed to setup kubemq",
			"error", err,
		)
	}

	if err := icon_processor.Run(gCtx); err != nil {
		zap.S().Fatalw("failed to start icon processor",
			"error", err,
		)
	}
}
