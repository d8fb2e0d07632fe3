package icon_processor

import (
	"runtime"
	"time"

	"github.com/appicon/icon-generator/internal/global"
	"github.com/appicon/icon-generator/internal/instance"
	"github.com/appicon/icon-generator/task"
	jsoniter "github.com/json-iterator/go"
	"github.com/kubemq-io/kubemq-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Run subscribes to the jobs channel and processes up to worker.jobs tasks
// at a time. The subscription callback blocks while every worker is busy.
func Run(gCtx global.Context) error {
	cfg := gCtx.Config().Worker

	jobCount := cfg.Jobs
	if jobCount <= 0 {
		jobCount = runtime.GOMAXPROCS(0)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	workers := make(chan Worker, jobCount)
	for i := 0; i < jobCount; i++ {
		workers <- Worker{}
	}

	if err := gCtx.Inst().KubeMQ.Subscribe(gCtx, cfg.JobsChannel, func(response instance.QueueTransactionMessageResponse, err error) {
		if err != nil {
			zap.S().Warnw("failed to get message",
				"error", err,
			)
			return
		}
		msg := response.Msg()
		zap.S().Infow("new message",
			"id", msg.MessageID,
		)

		t := task.Task{}
		if err := json.Unmarshal(msg.Body, &t); err != nil {
			zap.S().Warnw("bad task payload",
				"error", multierr.Append(err, response.Ack()),
			)
			return
		}

		worker := <-workers

		ctx, cancel := global.WithTimeout(gCtx, timeout)
		go func() {
			tick := time.NewTicker(time.Second * 15)
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-tick.C:
				}
				if err := response.ExtendVisibilitySeconds(60); err != nil {
					zap.S().Errorw("failed to extend task",
						"error", err,
					)
					cancel()
				}
			}
		}()
		go func() {
			defer func() {
				cancel()
				workers <- worker
			}()

			result := task.Result{
				ID:    t.ID,
				State: task.ResultStateFailed,
			}

			err := worker.Work(ctx, t, &result)
			if err != nil {
				err = multierr.Append(err, response.Reject())
				zap.S().Errorw("task processing failed",
					"task_id", t.ID,
					"error", err,
				)
			} else if err = response.Ack(); err != nil {
				zap.S().Errorw("failed to ack task",
					"task_id", t.ID,
					"error", err,
				)
			} else if len(result.FailedSizes) > 0 {
				result.State = task.ResultStatePartial
			} else {
				result.State = task.ResultStateSuccess
			}

			if err != nil {
				result.Message = err.Error()
			}

			resultData, err := json.Marshal(result)
			if err != nil {
				zap.S().Errorw("failed to marshal result",
					"error", err,
				)
				return
			}

			if _, err := gCtx.Inst().KubeMQ.Send(gCtx, kubemq.NewQueueMessage().
				SetChannel(cfg.ResultsChannel).
				SetBody(resultData),
			); err != nil {
				zap.S().Errorw("failed to publish result",
					"task_id", t.ID,
					"error", err,
				)
			}
		}()
	}); err != nil {
		return err
	}

	zap.S().Infof("Starting job worker with %d jobs", jobCount)

	return nil
}
