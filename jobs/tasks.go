// Package jobs wires background work for the invoicing service onto Asynq.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/invoice"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSendReminder is the task type for payment reminder emails.
	TaskSendReminder = "invoice:send_reminder"
	// TaskOverdueScan is the task type for the daily overdue sweep.
	TaskOverdueScan = "invoice:overdue_scan"
)

// SendReminderPayload identifies the invoice a reminder is for.
type SendReminderPayload struct {
	InvoiceID string `json:"invoiceId"`
	Email     string `json:"email"`
}

// NewSendReminderTask constructs an Asynq task.
func NewSendReminderTask(payload SendReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendReminder, data), nil
}

// NewOverdueScanTask constructs the scheduled overdue sweep task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueScan, nil)
}

// NewSendReminderHandler processes TaskSendReminder tasks.
func NewSendReminderHandler(service *invoice.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		inv, err := service.Get(ctx, payload.InvoiceID)
		if err != nil {
			if errors.Is(err, invoice.ErrNotFound) {
				return asynq.SkipRetry
			}
			return err
		}
		// Placeholder delivery: the SMTP integration lives with the wider
		// notification stack.
		logger.Info("payment reminder",
			slog.String("invoice", inv.InvoiceNumber),
			slog.String("to", payload.Email),
			slog.String("balance", invoice.FormatAmount(inv.Currency, inv.BalanceDue)))
		return nil
	}
}

// NewOverdueScanHandler processes TaskOverdueScan tasks: every sent invoice
// past its due date is moved to the persisted overdue status.
func NewOverdueScanHandler(service *invoice.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		candidates, err := service.OverdueCandidates(ctx)
		if err != nil {
			return err
		}
		for _, inv := range candidates {
			if _, err := service.MarkOverdue(ctx, inv.ID); err != nil {
				logger.Warn("mark overdue failed",
					slog.String("invoice", inv.ID), slog.Any("error", err))
			}
		}
		logger.Info("overdue scan complete", slog.Int("candidates", len(candidates)))
		return nil
	}
}
