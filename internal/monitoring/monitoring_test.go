package monitoring

import (
	"context"
	"strings"
	"testing"

	"github.com/appicon/icon-generator/internal/configure"
	"github.com/appicon/icon-generator/internal/global"
	"github.com/appicon/icon-generator/internal/svc/prometheus"
	"github.com/appicon/icon-generator/internal/testutil"
	"github.com/valyala/fasthttp"
)

func TestHandler(t *testing.T) {
	t.Parallel()

	gCtx, cancel := global.WithCancel(global.New(context.Background(), &configure.Config{}))
	defer cancel()

	prom := prometheus.New(prometheus.Options{})
	prom.Register(prom.Registry())
	prom.IconsGenerated(7)
	gCtx.Inst().Prometheus = prom

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/metrics")
	handler(gCtx)(ctx)

	testutil.Assert(t, fasthttp.StatusOK, ctx.Response.StatusCode(), "metrics served")
	testutil.Assert(t, true, strings.Contains(string(ctx.Response.Body()), "icon_generator_total_icons 7"), "icon counter exported")
}
