package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gatekeep/gatekeep/internal/jobs"
	"github.com/gatekeep/gatekeep/internal/notify"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendSMS is the task type for delivering SMS notifications.
	TaskTypeSendSMS = "sms:send"
)

// SendSMSPayload describes the information required to send an SMS.
type SendSMSPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// NewSendSMSTask constructs an Asynq task.
func NewSendSMSTask(payload SendSMSPayload) (*asynq.Task, error) {
	if payload.To == "" || payload.Body == "" {
		return nil, errors.New("jobs: sms recipient and body required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendSMS, data), nil
}

// SendSMSJob delivers TaskTypeSendSMS tasks through a notify.Sender.
type SendSMSJob struct {
	sender  notify.Sender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSendSMSJob builds the handler. metrics may be nil.
func NewSendSMSJob(sender notify.Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *SendSMSJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendSMSJob{sender: sender, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeSendSMS tasks. Malformed payloads and permanent gateway
// rejections are not retried.
func (j *SendSMSJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskTypeSendSMS)
	var payload SendSMSPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Error("sms payload", slog.Any("error", err))
		return tracker.End(fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry))
	}
	if payload.To == "" || payload.Body == "" {
		return tracker.End(fmt.Errorf("empty sms payload: %w", asynq.SkipRetry))
	}
	err := j.sender.Send(ctx, notify.Message{To: payload.To, Body: payload.Body})
	if err != nil {
		j.logger.Warn("sms delivery failed", slog.String("to", notify.Mask(payload.To)), slog.Any("error", err))
		if errors.Is(err, notify.ErrRejected) {
			return tracker.End(fmt.Errorf("%v: %w", err, asynq.SkipRetry))
		}
		return tracker.End(err)
	}
	j.logger.Info("sms delivered", slog.String("to", notify.Mask(payload.To)))
	return tracker.End(nil)
}
