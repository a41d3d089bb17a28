package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"contact-book/internal/email"
)

// VerificationEmailHandler procesa tareas email:verify en el worker.
type VerificationEmailHandler struct {
	sender email.Sender
	logger *zap.Logger
}

func NewVerificationEmailHandler(sender email.Sender, logger *zap.Logger) *VerificationEmailHandler {
	return &VerificationEmailHandler{sender: sender, logger: logger}
}

func (h *VerificationEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload VerificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode verification payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Email == "" || payload.Link == "" {
		return fmt.Errorf("verification payload incomplete: %w", asynq.SkipRetry)
	}
	if err := h.sender.SendVerificationLink(ctx, payload.Email, payload.Link); err != nil {
		h.logger.Warn("send verification email failed", zap.Error(err), zap.String("email", payload.Email))
		return err
	}
	h.logger.Info("verification email sent", zap.String("email", payload.Email))
	return nil
}
