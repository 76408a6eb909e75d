package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"payment-epayco/dto/model"
	"payment-epayco/helper"

	"go.uber.org/zap"
)

// CallbackData is the body posted to a merchant's notification url.
type CallbackData struct {
	TransactionID     string `json:"transaction_id"`
	Reference         string `json:"reference"`
	State             string `json:"state"`
	Message           string `json:"message"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	AcquirerReference string `json:"acquirer_reference"`
	UpdatedAt         int64  `json:"updated_at"`
}

type CallbackJob struct {
	MerchantURL string
	Data        CallbackData
}

type CallbackWorker struct {
	queue   chan CallbackJob
	client  *http.Client
	secret  string
	logger  *zap.Logger
	retries int
	backoff time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*CallbackWorker)

func WithRetries(retries int, backoff time.Duration) Option {
	return func(w *CallbackWorker) {
		w.retries = retries
		w.backoff = backoff
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(w *CallbackWorker) {
		w.client = client
	}
}

func WithQueueSize(size int) Option {
	return func(w *CallbackWorker) {
		w.queue = make(chan CallbackJob, size)
	}
}

func NewCallbackWorker(secret string, logger *zap.Logger, opts ...Option) *CallbackWorker {
	w := &CallbackWorker{
		queue:   make(chan CallbackJob, 100),
		client:  &http.Client{Timeout: 15 * time.Second},
		secret:  secret,
		logger:  logger,
		retries: 5,
		backoff: time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Notify queues a state change notification for the merchant. Transactions
// without a notification url are skipped. A full queue drops the job.
func (w *CallbackWorker) Notify(transaction model.PaymentTransaction) {
	if transaction.NotificationURL == "" {
		return
	}

	message := transaction.StateMessage
	if message == "" {
		message = helper.GetStatusMessage(string(transaction.State))
	}
	job := CallbackJob{
		MerchantURL: transaction.NotificationURL,
		Data: CallbackData{
			TransactionID:     transaction.ID,
			Reference:         transaction.Reference,
			State:             string(transaction.State),
			Message:           message,
			Amount:            helper.FormatAmount(transaction.Amount),
			Currency:          transaction.Currency,
			AcquirerReference: transaction.AcquirerReference,
			UpdatedAt:         time.Now().Unix(),
		},
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("Callback worker stopped, dropping notification", zap.String("reference", transaction.Reference))
		return
	}
	select {
	case w.queue <- job:
	default:
		w.logger.Error("Callback queue full, dropping notification", zap.String("reference", transaction.Reference))
	}
}

// ProcessCallbackQueue sends queued notifications until Stop is called. It
// returns at once when the worker is already stopped.
func (w *CallbackWorker) ProcessCallbackQueue(ctx context.Context) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	for job := range w.queue {
		w.wg.Add(1)
		go func(job CallbackJob) {
			defer w.wg.Done()
			if err := w.SendCallbackWithRetry(ctx, job); err != nil {
				w.logger.Error("Failed to send callback",
					zap.String("reference", job.Data.Reference),
					zap.String("url", job.MerchantURL),
					zap.Error(err),
				)
			}
		}(job)
	}
}

// Stop closes the queue and waits until the consumer loop has drained it and
// every delivery it started has finished.
func (w *CallbackWorker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *CallbackWorker) SendCallbackWithRetry(ctx context.Context, job CallbackJob) error {
	var lastErr error
	for i := 0; i < w.retries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.backoff):
			}
		}

		lastErr = w.SendCallback(ctx, job)
		if lastErr == nil {
			return nil
		}
		w.logger.Warn("Callback attempt failed",
			zap.String("reference", job.Data.Reference),
			zap.Int("attempt", i+1),
			zap.Error(lastErr),
		)
	}
	return fmt.Errorf("all retry attempts failed for reference %s: %w", job.Data.Reference, lastErr)
}

func (w *CallbackWorker) SendCallback(ctx context.Context, job CallbackJob) error {
	body, err := json.Marshal(job.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal callback data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.MerchantURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("bodysign", helper.GenerateBodySign(body, w.secret))

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send callback: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	w.logger.Info("Callback response",
		zap.String("reference", job.Data.Reference),
		zap.String("url", job.MerchantURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.ByteString("body", respBody),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback failed with status: %s, url: %s", resp.Status, job.MerchantURL)
	}
	return nil
}
