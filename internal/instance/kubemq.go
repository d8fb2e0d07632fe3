package instance

import (
	"context"

	"github.com/kubemq-io/kubemq-go"
)

type KubeMQ interface {
	Send(ctx context.Context, msg *kubemq.QueueMessage) (*kubemq.SendQueueMessageResult, error)
	Subscribe(ctx context.Context, channel string, cb func(response QueueTransactionMessageResponse, err error)) error
}

// QueueTransactionMessageResponse is one received message; exactly one of
// Ack or Reject settles it.
type QueueTransactionMessageResponse interface {
	Msg() *kubemq.QueueMessage
	Ack() error
	Reject() error
	ExtendVisibilitySeconds(value int) error
}
