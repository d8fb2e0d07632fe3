package global

import "github.com/appicon/icon-generator/internal/instance"

type Instances struct {
	KubeMQ     instance.KubeMQ
	S3         instance.S3
	Prometheus instance.Prometheus
}
