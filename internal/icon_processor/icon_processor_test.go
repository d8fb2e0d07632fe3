package icon_processor

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/appicon/icon-generator/internal/configure"
	"github.com/appicon/icon-generator/internal/global"
	"github.com/appicon/icon-generator/internal/svc/kubemq"
	"github.com/appicon/icon-generator/internal/testutil"
	"github.com/appicon/icon-generator/task"
	kmq "github.com/kubemq-io/kubemq-go"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Parallel()

	config := &configure.Config{}
	config.Worker.Jobs = 2
	config.Worker.JobsChannel = "icon-generator-jobs"
	config.Worker.ResultsChannel = "icon-generator-results"

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))
	defer cancel()

	queue, err := kubemq.NewMock(gCtx)
	testutil.IsNil(t, err, "kubemq init successful")
	gCtx.Inst().KubeMQ = queue

	setup(t, gCtx, map[string][]byte{
		"source.png": testutil.EncodePNG(t, testutil.Solid(16, 16, color.NRGBA{B: 255, A: 255})),
	})

	testutil.IsNil(t, Run(gCtx), "worker starts")

	send := func(v interface{}) {
		body, err := json.Marshal(v)
		testutil.IsNil(t, err, "task marshals")

		_, err = queue.Send(gCtx, kmq.NewQueueMessage().SetChannel(config.Worker.JobsChannel).SetBody(body))
		testutil.IsNil(t, err, "We send a queue message")
	}

	send(task.Task{
		ID:     "good-task",
		Input:  task.TaskInput{Bucket: "input", Key: "source.png"},
		Output: task.TaskOutput{Bucket: "output", Prefix: "out"},
	})
	send(task.Task{
		ID:     "bad-task",
		Input:  task.TaskInput{Bucket: "input", Key: "missing.png"},
		Output: task.TaskOutput{Bucket: "output", Prefix: "out"},
	})

	results := map[string]task.Result{}
	require.Eventually(t, func() bool {
		for msg := queue.Pop(config.Worker.ResultsChannel); msg != nil; msg = queue.Pop(config.Worker.ResultsChannel) {
			result := task.Result{}
			if json.Unmarshal(msg.Body, &result) == nil {
				results[result.ID] = result
			}
		}

		return len(results) == 2
	}, time.Second*30, time.Millisecond*50, "both results are published")

	testutil.Assert(t, task.ResultStateSuccess, results["good-task"].State, "The job processed successfully")
	testutil.Assert(t, "", results["good-task"].Message, "No message was returned")
	testutil.Assert(t, 7, len(results["good-task"].ImageOutputs), "every size uploaded")

	testutil.Assert(t, task.ResultStateFailed, results["bad-task"].State, "The missing file fails")
	testutil.Assert(t, true, results["bad-task"].Message != "", "The failure is explained")
}
