package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type ReminderJobPayload struct {
	Reminder  service.Reminder `json:"reminder"`
	CreatedAt string           `json:"created_at"`
	Try       int              `json:"try"`
}

func NewReminderJobPayload(r service.Reminder, now time.Time) ReminderJobPayload {
	return ReminderJobPayload{
		Reminder:  r,
		CreatedAt: now.Format(time.RFC3339),
	}
}

// QueueNotifier hands reminders to the consumer instead of mailing inline.
type QueueNotifier struct {
	publisher Publisher
	logger    *zap.SugaredLogger
}

var _ service.Notifier = (*QueueNotifier)(nil)

func NewQueueNotifier(publisher Publisher, logger *zap.SugaredLogger) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, logger: logger}
}

func (qn *QueueNotifier) NotifyPendingSignature(ctx context.Context, r service.Reminder) error {
	body, err := json.Marshal(NewReminderJobPayload(r, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal reminder job: %w", err)
	}

	if err := qn.publisher.Publish(ctx, QueueTermoReminder, body); err != nil {
		return fmt.Errorf("failed to publish reminder job: %w", err)
	}

	qn.logger.Debugf("Reminder for %s queued for %s", r.VacancyID, r.RecipientEmail)
	return nil
}

// Returns whether a failed job is worth retrying.
type ReminderJobHandler func(ctx context.Context, job ReminderJobPayload) (bool, error)

type ReminderConsumer struct {
	publisher Publisher
	handler   ReminderJobHandler
	logger    *zap.SugaredLogger
}

func NewReminderConsumer(publisher Publisher, handler ReminderJobHandler, logger *zap.SugaredLogger) *ReminderConsumer {
	return &ReminderConsumer{publisher: publisher, handler: handler, logger: logger}
}

// Start maxWorker workers reading from msgs until ctx is done or the channel closes.
func (c *ReminderConsumer) Run(ctx context.Context, msgs <-chan amqp.Delivery, maxWorker int) {
	for i := 0; i < maxWorker; i++ {
		go c.runWorker(ctx, i+1, msgs)
	}
}

func (c *ReminderConsumer) runWorker(ctx context.Context, workerNumber int, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Infof("[Reminder Worker %d] Shutting down", workerNumber)
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Infof("[Reminder Worker %d] Message channel closed", workerNumber)
				return
			}
			c.process(ctx, workerNumber, msg)
		}
	}
}

func (c *ReminderConsumer) process(ctx context.Context, workerNumber int, msg amqp.Delivery) {
	if len(msg.Body) == 0 {
		c.logger.Warnf("[Reminder Worker %d] Received empty message body", workerNumber)
		c.nack(msg)
		return
	}

	var job ReminderJobPayload
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		c.logger.Warnf("[Reminder Worker %d] Invalid payload: %v", workerNumber, err)
		c.nack(msg)
		return
	}

	prefix := fmt.Sprintf("[Reminder Worker %d: Retry %d]", workerNumber, job.Try)

	retry, err := c.handler(ctx, job)
	if err != nil {
		c.logger.Errorf("%s Failed to send reminder for vacancy %s to %s: %v", prefix, job.Reminder.VacancyID, job.Reminder.RecipientEmail, err)

		if !retry || job.Try >= MAX_QUEUE_RETRY {
			c.logger.Warnf("%s Dropping reminder for vacancy %s (retry: %v)", prefix, job.Reminder.VacancyID, retry)
			c.nack(msg)
			return
		}

		c.requeue(ctx, prefix, msg, job)
		return
	}

	c.logger.Infof("%s Sent reminder for vacancy %s to %s", prefix, job.Reminder.VacancyID, job.Reminder.RecipientEmail)
	c.ack(msg)
}

// Publish a copy with the try counter bumped, then ack the original.
func (c *ReminderConsumer) requeue(ctx context.Context, prefix string, msg amqp.Delivery, job ReminderJobPayload) {
	job.Try++
	body, err := json.Marshal(job)
	if err != nil {
		c.logger.Errorf("%s Failed to marshal reminder for requeue: %v", prefix, err)
		c.nack(msg)
		return
	}

	if err := c.publisher.Publish(ctx, QueueTermoReminder, body); err != nil {
		c.logger.Errorf("%s Failed to requeue reminder for vacancy %s: %v", prefix, job.Reminder.VacancyID, err)
		c.nack(msg)
		return
	}

	c.logger.Infof("%s Requeued reminder for vacancy %s", prefix, job.Reminder.VacancyID)
	c.ack(msg)
}

func (c *ReminderConsumer) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil {
		c.logger.Errorf("Failed to ack delivery %d: %v", msg.DeliveryTag, err)
	}
}

func (c *ReminderConsumer) nack(msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		c.logger.Errorf("Failed to nack delivery %d: %v", msg.DeliveryTag, err)
	}
}
