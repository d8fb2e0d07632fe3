package prometheus

import (
	"testing"
	"time"

	"github.com/appicon/icon-generator/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstance(t *testing.T) {
	t.Parallel()

	inst := New(Options{Labels: prometheus.Labels{"pod": "test"}}).(*Instance)
	inst.Register(inst.Registry())

	inst.StartTask()(true)
	inst.StartTask()(false)
	inst.StartTask()(true)

	testutil.Assert(t, 2.0, promtest.ToFloat64(inst.totalSuccessfulTasks), "successful tasks")
	testutil.Assert(t, 1.0, promtest.ToFloat64(inst.totalFailedTasks), "failed tasks")
	testutil.Assert(t, 0.0, promtest.ToFloat64(inst.currentTasks), "no task running")

	done := inst.StartRequest()
	testutil.Assert(t, 1.0, promtest.ToFloat64(inst.currentRequests), "request running")
	done(200)
	testutil.Assert(t, 1.0, promtest.ToFloat64(inst.totalRequests.WithLabelValues("200")), "request counted")

	inst.IconsGenerated(7)
	inst.TotalBytesUploaded(10)
	inst.TotalBytesDownloaded(4)
	testutil.Assert(t, 7.0, promtest.ToFloat64(inst.totalIconsGenerated), "icons")
	testutil.Assert(t, 10.0, promtest.ToFloat64(inst.totalBytesUploaded), "uploaded bytes")
	testutil.Assert(t, 4.0, promtest.ToFloat64(inst.totalBytesDownloaded), "downloaded bytes")

	inst.ObserveStage("base", time.Millisecond)
	inst.MakeArchive()()

	families, err := inst.Registry().Gather()
	testutil.IsNil(t, err, "gather succeeds")

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	testutil.Assert(t, true, names["icon_generator_stage_duration_seconds"], "stage histogram exported")
	testutil.Assert(t, true, names["icon_generator_total_tasks"], "task counter exported")
}
