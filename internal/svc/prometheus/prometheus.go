package prometheus

import (
	"strconv"
	"time"

	"github.com/appicon/icon-generator/internal/instance"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "icon_generator"

type Options struct {
	Labels prometheus.Labels
}

func copyLabels(p prometheus.Labels) prometheus.Labels {
	x := prometheus.Labels{}
	for k, v := range p {
		x[k] = v
	}

	return x
}

func New(o Options) instance.Prometheus {
	totalSuccessfulTasks := copyLabels(o.Labels)
	totalFailedTasks := copyLabels(o.Labels)
	totalBytesDownloaded := copyLabels(o.Labels)
	totalBytesUploaded := copyLabels(o.Labels)

	totalSuccessfulTasks["state"] = "successful"
	totalFailedTasks["state"] = "failed"

	totalBytesDownloaded["state"] = "downloaded"
	totalBytesUploaded["state"] = "uploaded"

	return &Instance{
		registry: prometheus.NewRegistry(),

		totalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "total_requests",
			Help:        "The total number of api requests by status code",
			ConstLabels: copyLabels(o.Labels),
		}, []string{"status"}),
		currentRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "current_requests",
			Help:        "The current number of api requests",
			ConstLabels: copyLabels(o.Labels),
		}),
		requestDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "request_duration_seconds",
			Help:        "The seconds spent serving api requests",
			ConstLabels: copyLabels(o.Labels),
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rate_limited_requests",
			Help:        "The total number of requests rejected by the rate limiter",
			ConstLabels: copyLabels(o.Labels),
		}),

		totalSuccessfulTasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "total_tasks",
			Help:        "The total number of tasks",
			ConstLabels: totalSuccessfulTasks,
		}),
		totalFailedTasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "total_tasks",
			Help:        "The total number of tasks",
			ConstLabels: totalFailedTasks,
		}),
		currentTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "current_tasks",
			Help:        "The current number of tasks",
			ConstLabels: copyLabels(o.Labels),
		}),
		taskDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "task_duration_seconds",
			Help:        "The seconds spent running tasks",
			ConstLabels: copyLabels(o.Labels),
		}),

		stageDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "stage_duration_seconds",
			Help:        "The seconds spent in each stage of icon generation",
			ConstLabels: copyLabels(o.Labels),
		}, []string{"stage"}),
		inputFileType: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "input_file_type",
			Help:        "The content types of source images",
			ConstLabels: copyLabels(o.Labels),
		}, []string{"type"}),

		totalIconsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "total_icons",
			Help:        "The total number of icons generated",
			ConstLabels: copyLabels(o.Labels),
		}),
		totalBytesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "total_bytes",
			Help:        "The total number of bytes transferred",
			ConstLabels: totalBytesDownloaded,
		}),
		totalBytesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "total_bytes",
			Help:        "The total number of bytes transferred",
			ConstLabels: totalBytesUploaded,
		}),
	}
}

type Instance struct {
	registry *prometheus.Registry

	totalRequests          *prometheus.CounterVec
	currentRequests        prometheus.Gauge
	requestDurationSeconds prometheus.Histogram
	rateLimited            prometheus.Counter

	totalSuccessfulTasks prometheus.Counter
	totalFailedTasks     prometheus.Counter
	currentTasks         prometheus.Gauge
	taskDurationSeconds  prometheus.Histogram

	stageDurationSeconds *prometheus.HistogramVec
	inputFileType        *prometheus.CounterVec

	totalIconsGenerated  prometheus.Counter
	totalBytesDownloaded prometheus.Counter
	totalBytesUploaded   prometheus.Counter
}

func (m *Instance) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.totalRequests,
		m.currentRequests,
		m.requestDurationSeconds,
		m.rateLimited,

		m.currentTasks,
		m.taskDurationSeconds,
		m.totalFailedTasks,
		m.totalSuccessfulTasks,

		m.stageDurationSeconds,
		m.inputFileType,

		m.totalIconsGenerated,
		m.totalBytesDownloaded,
		m.totalBytesUploaded,
	)
}

func (m *Instance) Registry() *prometheus.Registry {
	return m.registry
}

func seconds(d time.Duration) float64 {
	return float64(d/time.Millisecond) / 1000
}

func (m *Instance) StartRequest() func(status int) {
	start := time.Now()
	m.currentRequests.Inc()

	return func(status int) {
		m.totalRequests.WithLabelValues(strconv.Itoa(status)).Inc()
		m.currentRequests.Dec()
		m.requestDurationSeconds.Observe(seconds(time.Since(start)))
	}
}

func (m *Instance) StartTask() func(success bool) {
	start := time.Now()
	m.currentTasks.Inc()

	return func(success bool) {
		if success {
			m.totalSuccessfulTasks.Inc()
		} else {
			m.totalFailedTasks.Inc()
		}
		m.currentTasks.Dec()
		m.taskDurationSeconds.Observe(seconds(time.Since(start)))
	}
}

func (m *Instance) ObserveStage(stage string, d time.Duration) {
	m.stageDurationSeconds.WithLabelValues(stage).Observe(seconds(d))
}

func (m *Instance) stage(stage string) func() {
	start := time.Now()

	return func() {
		m.ObserveStage(stage, time.Since(start))
	}
}

func (m *Instance) DownloadFile() func() {
	return m.stage("download")
}

func (m *Instance) MakeArchive() func() {
	return m.stage("archive")
}

func (m *Instance) UploadResults() func() {
	return m.stage("upload")
}

func (m *Instance) InputFileType(mime string) {
	m.inputFileType.WithLabelValues(mime).Inc()
}

func (m *Instance) IconsGenerated(n int) {
	m.totalIconsGenerated.Add(float64(n))
}

func (m *Instance) TotalBytesDownloaded(bytes int) {
	m.totalBytesDownloaded.Add(float64(bytes))
}

func (m *Instance) TotalBytesUploaded(bytes int) {
	m.totalBytesUploaded.Add(float64(bytes))
}

func (m *Instance) RateLimited() {
	m.rateLimited.Inc()
}
