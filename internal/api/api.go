package api

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/appicon/icon-generator/archive"
	"github.com/appicon/icon-generator/container"
	"github.com/appicon/icon-generator/icons"
	"github.com/appicon/icon-generator/internal/global"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	routeGenerate = "/api/icons/generate"
	routeSizes    = "/api/icons/sizes"

	formField = "image"
)

type Server struct {
	gCtx    global.Context
	limiter *limiter
}

func NewServer(gCtx global.Context) *Server {
	cfg := gCtx.Config().API

	s := &Server{gCtx: gCtx}
	if cfg.RateLimit.Enabled {
		s.limiter = newLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	}

	return s
}

func New(gCtx global.Context) <-chan struct{} {
	cfg := gCtx.Config().API

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	srv := fasthttp.Server{
		Handler:            NewServer(gCtx).Handler,
		Name:               "icon-generator",
		MaxRequestBodySize: cfg.MaxUploadBytes + 64*1024,
		ReadTimeout:        timeout,
		WriteTimeout:       timeout,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		zap.S().Infow("API enabled",
			"bind", cfg.Bind,
		)
		if err := srv.ListenAndServe(cfg.Bind); err != nil {
			zap.S().Fatalw("failed to start api bind",
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

func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	finish := s.gCtx.Inst().Prometheus.StartRequest()

	requestID := uuid.New().String()
	ctx.Response.Header.Set("X-Request-Id", requestID)

	defer func() {
		if pnk := recover(); pnk != nil {
			zap.S().Errorw("panic in api",
				"request_id", requestID,
				"panic", pnk,
			)
			ctx.Response.ResetBody()
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		}

		finish(ctx.Response.StatusCode())

		zap.S().Infow("request",
			"request_id", requestID,
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"duration", time.Since(start),
		)
	}()

	path := string(ctx.Path())
	if strings.HasPrefix(path, "/api/") {
		cors(ctx)
	}

	if ctx.IsOptions() && strings.HasPrefix(path, "/api/") {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
		return
	}

	if path == routeGenerate && s.limiter != nil && !s.limiter.Allow(ctx.RemoteIP().String(), start) {
		s.gCtx.Inst().Prometheus.RateLimited()
		writeError(ctx, fasthttp.StatusTooManyRequests, "too many requests, try again later")
		return
	}

	switch {
	case path == routeGenerate && ctx.IsPost():
		s.generate(ctx, requestID)
	case path == routeSizes && ctx.IsGet():
		s.sizes(ctx)
	case path == routeGenerate || path == routeSizes:
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func cors(ctx *fasthttp.RequestCtx) {
	h := &ctx.Response.Header
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "*")
	h.Set("Access-Control-Allow-Headers", "*")
	h.Set("Access-Control-Expose-Headers", "Content-Disposition, ETag, X-Request-Id")
}

func (s *Server) generate(ctx *fasthttp.RequestCtx, requestID string) {
	cfg := s.gCtx.Config().API

	fh, err := ctx.FormFile(formField)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "an image file must be uploaded in the \""+formField+"\" field")
		return
	}

	if cfg.MaxUploadBytes > 0 && fh.Size > int64(cfg.MaxUploadBytes) {
		writeError(ctx, fasthttp.StatusBadRequest, "the image must not be larger than "+strconv.Itoa(cfg.MaxUploadBytes)+" bytes")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "the upload could not be read")
		return
	}
	raw, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "the upload could not be read")
		return
	}

	match := container.Match(raw)
	if !container.IsImage(match) {
		writeError(ctx, fasthttp.StatusBadRequest, "only image files can be uploaded")
		return
	}
	if !container.Supported(match) {
		writeError(ctx, fasthttp.StatusBadRequest, "unsupported image format: "+match.Extension)
		return
	}

	prom := s.gCtx.Inst().Prometheus
	prom.InputFileType(match.MIME.Value)
	prom.TotalBytesDownloaded(len(raw))

	out, err := icons.GenerateWith(raw, icons.Options{
		MaxPixels: cfg.MaxPixels,
		Observe: func(stage icons.Stage, d time.Duration) {
			prom.ObserveStage(string(stage), d)
		},
	})
	if err != nil {
		zap.S().Errorw("failed to generate icons",
			"request_id", requestID,
			"error", err,
		)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	prom.IconsGenerated(len(out))

	done := prom.MakeArchive()
	zipped, err := archive.Zip(out)
	done()
	if err != nil {
		zap.S().Errorw("failed to package icons",
			"request_id", requestID,
			"error", err,
		)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	prom.TotalBytesUploaded(len(zipped))

	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+archive.FileName+`"`)
	ctx.Response.Header.Set("ETag", `"`+archive.Digest(zipped)+`"`)
	ctx.SetContentType(archive.ContentType)
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(zipped)
}

type sizeInfo struct {
	Size icons.Size `json:"size"`
	Name string     `json:"name"`
	Tier icons.Tier `json:"tier"`
}

func (s *Server) sizes(ctx *fasthttp.RequestCtx) {
	out := struct {
		BaseSize int        `json:"base_size"`
		Sizes    []sizeInfo `json:"sizes"`
	}{
		BaseSize: icons.BaseSize,
	}

	for _, size := range icons.Sizes() {
		out.Sizes = append(out.Sizes, sizeInfo{
			Size: size,
			Name: archive.EntryName(size),
			Tier: icons.TierFor(size),
		})
	}

	writeJSON(ctx, fasthttp.StatusOK, out)
}

func writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(b)
}
