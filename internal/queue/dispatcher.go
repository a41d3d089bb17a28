package queue

import (
	"context"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"contact-book/internal/email"
)

const (
	defaultMaxRetry    = 5
	defaultSendTimeout = 30 * time.Second
	enqueueTimeout     = 3 * time.Second
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqDispatcher encola el correo en Redis; el envio lo hace cmd/worker.
type AsynqDispatcher struct {
	client   enqueuer
	logger   *zap.Logger
	maxRetry int
}

func NewAsynqDispatcher(client *asynq.Client, logger *zap.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{client: client, logger: logger, maxRetry: defaultMaxRetry}
}

// DispatchVerification nunca devuelve error: un fallo al encolar solo se registra.
func (d *AsynqDispatcher) DispatchVerification(ctx context.Context, emailAddr, link string) {
	task, err := NewVerificationTask(emailAddr, link)
	if err != nil {
		d.logger.Warn("build verification task failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	info, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(d.maxRetry))
	if err != nil {
		d.logger.Warn("enqueue verification email failed", zap.Error(err), zap.String("email", emailAddr))
		return
	}
	d.logger.Debug("verification email enqueued", zap.String("task_id", info.ID), zap.String("queue", info.Queue))
}

// InlineDispatcher envia el correo en una goroutine separada del request.
type InlineDispatcher struct {
	sender  email.Sender
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewInlineDispatcher(sender email.Sender, logger *zap.Logger) *InlineDispatcher {
	return &InlineDispatcher{sender: sender, logger: logger, timeout: defaultSendTimeout}
}

func (d *InlineDispatcher) DispatchVerification(ctx context.Context, emailAddr, link string) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		if err := d.sender.SendVerificationLink(sendCtx, emailAddr, link); err != nil {
			d.logger.Warn("send verification email failed", zap.Error(err), zap.String("email", emailAddr))
		}
	}()
}

// Wait bloquea hasta que terminen los envios en curso.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}
