package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/pkg/errors"
	"github.com/relloyd/bqload/logger"
	"google.golang.org/api/option"
)

// Handler is called once for each trigger file notification.
type Handler func(ctx context.Context, n Notification) error

type ListenerConfig struct {
	ProjectID      string `errorTxt:"GCP project" mandatory:"yes"`
	SubscriptionID string `errorTxt:"Pub/Sub subscription" mandatory:"yes"`
	MaxInFlight    int
}

// Listener receives Cloud Storage notifications from a Pub/Sub subscription.
type Listener struct {
	client *pubsub.Client
	sub    *pubsub.Subscription
	log    logger.Logger
}

func NewListener(ctx context.Context, cfg ListenerConfig, log logger.Logger, opts ...option.ClientOption) (*Listener, error) {
	c, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create Pub/Sub client for project %v", cfg.ProjectID)
	}
	sub := c.Subscription(cfg.SubscriptionID)
	sub.ReceiveSettings.MaxOutstandingMessages = cfg.MaxInFlight
	sub.ReceiveSettings.NumGoroutines = 1
	return &Listener{client: c, sub: sub, log: log}, nil
}

// Listen blocks until ctx is cancelled or the subscription fails.
// Messages are always acknowledged after h returns; a failed load is logged, not redelivered.
func (l *Listener) Listen(ctx context.Context, h Handler) error {
	l.log.Info("listening for trigger files on subscription ", l.sub.ID())
	err := l.sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		defer m.Ack()
		if err := dispatch(ctx, m.Attributes, h, l.log); err != nil {
			l.log.Error("message ", m.ID, ": ", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "error receiving messages")
	}
	return nil
}

func (l *Listener) Close() error {
	return l.client.Close()
}

func dispatch(ctx context.Context, attrs map[string]string, h Handler, log logger.Logger) error {
	n, err := ParseNotification(attrs)
	if err != nil {
		return err
	}
	if !n.IsTrigger() {
		log.Debug("ignoring ", n.EventType, " for ", n.URI())
		return nil
	}
	log.Info("trigger file received: ", n.URI())
	return h(ctx, n)
}
