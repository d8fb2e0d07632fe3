package kubemq

import (
	"context"
	"strings"
	"sync"

	"github.com/appicon/icon-generator/internal/instance"
	"github.com/kubemq-io/kubemq-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// errCodeNoMessage prefixes the error a transaction poll returns when its wait
// time expires on an empty channel. kubemq-go exposes no typed error for it.
const errCodeNoMessage = "Error 138:"

const (
	defaultWaitSeconds       = 10
	defaultVisibilitySeconds = 60
)

type Options struct {
	Host      string
	Port      int
	ClientID  string
	AuthToken string

	// WaitSeconds is how long one poll blocks on an empty channel.
	WaitSeconds int
	// VisibilitySeconds is how long a received message stays hidden before
	// it is redelivered, unless extended.
	VisibilitySeconds int
}

func (o Options) withDefaults() Options {
	if o.WaitSeconds <= 0 {
		o.WaitSeconds = defaultWaitSeconds
	}
	if o.VisibilitySeconds <= 0 {
		o.VisibilitySeconds = defaultVisibilitySeconds
	}

	return o
}

// Instance sends on one shared client and opens one receiving client per
// subscription. Every client is closed when the context given to New ends.
type Instance struct {
	options Options
	sender  *kubemq.QueuesClient

	mtx       sync.Mutex
	receivers []*kubemq.QueuesClient
}

type transactionResponse struct {
	*kubemq.QueueTransactionMessageResponse
}

func (r transactionResponse) Msg() *kubemq.QueueMessage {
	return r.Message
}

func dial(ctx context.Context, o Options) (*kubemq.QueuesClient, error) {
	return kubemq.NewQueuesStreamClient(ctx,
		kubemq.WithAddress(o.Host, o.Port),
		kubemq.WithClientId(o.ClientID),
		kubemq.WithTransportType(kubemq.TransportTypeGRPC),
		kubemq.WithAuthToken(o.AuthToken),
		kubemq.WithAutoReconnect(true),
	)
}

func New(ctx context.Context, o Options) (instance.KubeMQ, error) {
	o = o.withDefaults()

	sender, err := dial(ctx, o)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		options: o,
		sender:  sender,
	}

	go func() {
		<-ctx.Done()
		if err := inst.close(); err != nil {
			zap.S().Warnw("failed to close kubemq clients",
				"error", err,
			)
		}
	}()

	return inst, nil
}

func (i *Instance) close() error {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	err := i.sender.Close()
	for _, recv := range i.receivers {
		err = multierr.Append(err, recv.Close())
	}
	i.receivers = nil

	return err
}

func (i *Instance) Send(ctx context.Context, msg *kubemq.QueueMessage) (*kubemq.SendQueueMessageResult, error) {
	return i.sender.Send(ctx, msg)
}

// Subscribe delivers every message on channel to cb until ctx is done. Empty
// polls are swallowed.
func (i *Instance) Subscribe(ctx context.Context, channel string, cb func(response instance.QueueTransactionMessageResponse, err error)) error {
	recv, err := dial(ctx, i.options)
	if err != nil {
		return err
	}

	stop, err := recv.TransactionStream(ctx, transactionRequest(i.options, channel), func(response *kubemq.QueueTransactionMessageResponse, err error) {
		switch {
		case isEmptyPoll(err):
		case err != nil:
			cb(nil, err)
		case response != nil:
			cb(transactionResponse{response}, nil)
		}
	})
	if err != nil {
		return multierr.Append(err, recv.Close())
	}

	i.mtx.Lock()
	i.receivers = append(i.receivers, recv)
	i.mtx.Unlock()

	go func() {
		<-ctx.Done()
		stop <- struct{}{}
	}()

	return nil
}

func transactionRequest(o Options, channel string) *kubemq.QueueTransactionMessageRequest {
	return kubemq.NewQueueTransactionMessageRequest().
		SetChannel(channel).
		SetClientId(o.ClientID).
		SetWaitTimeSeconds(o.WaitSeconds).
		SetVisibilitySeconds(o.VisibilitySeconds)
}

func isEmptyPoll(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), errCodeNoMessage)
}
