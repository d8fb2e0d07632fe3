package kubemq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appicon/icon-generator/internal/instance"
	"github.com/kubemq-io/kubemq-go"
)

type mtxArr struct {
	mtx sync.Mutex
	arr []*kubemq.QueueMessage
}

type MockInstance struct {
	mtx  sync.Mutex
	msgs map[string]*mtxArr
}

type MockQueueTransactionMessageResponse struct {
	msg  *kubemq.QueueMessage
	once sync.Once
}

func NewMock(ctx context.Context) (*MockInstance, error) {
	return &MockInstance{
		msgs: map[string]*mtxArr{},
	}, nil
}

func (i *MockInstance) channel(name string) *mtxArr {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	ch, ok := i.msgs[name]
	if !ok {
		ch = &mtxArr{}
		i.msgs[name] = ch
	}

	return ch
}

func (i *MockInstance) Send(ctx context.Context, msg *kubemq.QueueMessage) (*kubemq.SendQueueMessageResult, error) {
	ch := i.channel(msg.Channel)
	ch.mtx.Lock()
	ch.arr = append(ch.arr, msg)
	ch.mtx.Unlock()

	return &kubemq.SendQueueMessageResult{}, nil
}

// Pop removes the oldest message on channel, if any.
func (i *MockInstance) Pop(channel string) *kubemq.QueueMessage {
	ch := i.channel(channel)
	ch.mtx.Lock()
	defer ch.mtx.Unlock()

	if len(ch.arr) == 0 {
		return nil
	}

	msg := ch.arr[0]
	ch.arr = ch.arr[1:]

	return msg
}

func (i *MockInstance) Subscribe(ctx context.Context, channel string, cb func(response instance.QueueTransactionMessageResponse, err error)) error {
	go func() {
		tick := time.NewTicker(time.Millisecond * 10)
		defer tick.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}

			if msg := i.Pop(channel); msg != nil {
				cb(&MockQueueTransactionMessageResponse{msg: msg}, nil)
			}
		}
	}()

	return nil
}

func (m *MockQueueTransactionMessageResponse) settle() error {
	err := fmt.Errorf("already responded")
	m.once.Do(func() {
		err = nil
	})

	return err
}

func (m *MockQueueTransactionMessageResponse) Ack() error {
	return m.settle()
}

func (m *MockQueueTransactionMessageResponse) Reject() error {
	return m.settle()
}

func (m *MockQueueTransactionMessageResponse) Msg() *kubemq.QueueMessage {
	return m.msg
}

func (m *MockQueueTransactionMessageResponse) ExtendVisibilitySeconds(value int) error {
	return nil
}
