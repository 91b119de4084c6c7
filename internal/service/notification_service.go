package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"medical-scheduling/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const notificationSendTimeout = 5 * time.Second

// Notification is one message for one user. Data carries client hints such
// as the deep link to open.
type Notification struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Data   map[string]string
}

// NotificationService delivers notifications to users.
type NotificationService interface {
	SendToUser(ctx context.Context, n Notification) error
}

// redisStreamNotifier appends notifications to a Redis stream consumed by
// the push delivery worker.
type redisStreamNotifier struct {
	client *redis.Client
	cfg    config.NotificationConfig
}

func NewRedisStreamNotifier(client *redis.Client, cfg config.NotificationConfig) NotificationService {
	return &redisStreamNotifier{
		client: client,
		cfg:    cfg,
	}
}

func (n *redisStreamNotifier) SendToUser(ctx context.Context, notification Notification) error {
	data, err := json.Marshal(notification.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: n.cfg.Stream,
		Values: map[string]interface{}{
			"user_id": notification.UserID.String(),
			"title":   notification.Title,
			"body":    notification.Body,
			"data":    string(data),
		},
	}
	if n.cfg.MaxLength > 0 {
		args.MaxLen = n.cfg.MaxLength
		args.Approx = true
	}

	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", n.cfg.Stream, err)
	}
	return nil
}

// logNotifier only logs. Used when no broker is configured.
type logNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) NotificationService {
	return &logNotifier{log: log}
}

func (n *logNotifier) SendToUser(ctx context.Context, notification Notification) error {
	n.log.WithFields(logrus.Fields{
		"user_id": notification.UserID,
		"title":   notification.Title,
	}).Info(notification.Body)
	return nil
}

// NotificationDispatcher sends notifications in the background. Failures
// are logged and never reach the caller.
type NotificationDispatcher struct {
	service NotificationService
	log     *logrus.Logger
	wg      sync.WaitGroup
}

func NewNotificationDispatcher(service NotificationService, log *logrus.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		service: service,
		log:     log,
	}
}

func (d *NotificationDispatcher) Dispatch(notifications ...Notification) {
	for _, n := range notifications {
		d.wg.Add(1)
		go func(n Notification) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
			defer cancel()

			if err := d.service.SendToUser(ctx, n); err != nil {
				d.log.WithField("user_id", n.UserID).Warnf("Failed to send notification %q: %+v", n.Title, err)
			}
		}(n)
	}
}

// Wait blocks until every dispatched notification finished. Called on
// shutdown.
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}
