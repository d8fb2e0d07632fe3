package instance

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Prometheus interface {
	Register(r prometheus.Registerer)
	Registry() *prometheus.Registry

	StartRequest() func(status int)
	StartTask() func(success bool)

	ObserveStage(stage string, d time.Duration)
	DownloadFile() func()
	MakeArchive() func()
	UploadResults() func()

	InputFileType(mime string)
	IconsGenerated(int)
	TotalBytesDownloaded(int)
	TotalBytesUploaded(int)
	RateLimited()
}
