package health

import (
	"context"
	"time"

	"github.com/appicon/icon-generator/internal/global"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func handler(gCtx global.Context) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Errorw("panic in health",
					"panic", err,
				)
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			}
		}()

		s3Down := false

		if gCtx.Inst().S3 != nil {
			lCtx, cancel := context.WithTimeout(gCtx, time.Second*5)
			if _, err := gCtx.Inst().S3.ListBuckets(lCtx); err != nil {
				s3Down = true
				zap.S().Warnw("s3 is not responding",
					"error", err,
				)
			}
			cancel()
		}

		if s3Down {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}

		ctx.SetStatusCode(fasthttp.StatusOK)
	}
}

func New(gCtx global.Context) <-chan struct{} {
	done := make(chan struct{})

	srv := fasthttp.Server{
		Handler:          handler(gCtx),
		GetOnly:          true,
		DisableKeepalive: true,
	}

	go func() {
		defer close(done)
		zap.S().Infow("Health enabled",
			"bind", gCtx.Config().Health.Bind,
		)

		if err := srv.ListenAndServe(gCtx.Config().Health.Bind); err != nil {
			zap.S().Fatalw("failed to bind health",
				"error", err,
			)
		}
	}()

	go func() {
		<-gCtx.Done()

		_ = srv.Shutdown()
	}()

	return done
}
