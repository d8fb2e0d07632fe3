package task

type Task struct {
	ID     string     `json:"id"`
	Input  TaskInput  `json:"input"`
	Output TaskOutput `json:"output"`
	// Archive also uploads every icon packed as icons.zip.
	Archive bool `json:"archive"`
	// Partial keeps the icons that were produced when some sizes fail.
	Partial bool       `json:"partial"`
	Limits  TaskLimits `json:"limits"`
}

type TaskLimits struct {
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`
}

type TaskInput struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type TaskOutput struct {
	Prefix       string `json:"prefix"`
	ACL          string `json:"acl"`
	Bucket       string `json:"bucket"`
	CacheControl string `json:"cache_control"`
}
