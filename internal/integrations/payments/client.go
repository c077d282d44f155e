package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/refund"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платежного коллаборатора (Stripe)
// Движок бронирования вызывает его строго после коммита локальной транзакции:
// отмена уже зафиксирована, возврат выполняется поверх нее
type Client struct {
	enabled bool
	log     Logger
}

// NewClient создает клиент возвратов
// При enabled=false (dev-окружение без платежного шлюза) возвраты
// логируются и пропускаются
func NewClient(apiKey string, enabled bool, log Logger) *Client {
	if enabled {
		stripe.Key = apiKey
	}
	return &Client{enabled: enabled, log: log}
}

// RefundPayment выполняет возврат amount (доля от суммы бронирования)
// по внешнему идентификатору платежа
// idempotencyKey привязан к ID бронирования: повтор вызова после сбоя
// не создает второй возврат
func (c *Client) RefundPayment(ctx context.Context, paymentRef string, amount float64, idempotencyKey string) error {
	if !c.enabled {
		c.log.Warn("Payments disabled, skipping refund: payment_ref=%s, amount=%.2f", paymentRef, amount)
		return nil
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
		Amount:        stripe.Int64(toCents(amount)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	result, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("%w: payment_ref=%s: %w", ErrRefundFailed, paymentRef, err)
	}

	c.log.Info("Refund executed: payment_ref=%s, refund_id=%s, amount=%.2f", paymentRef, result.ID, amount)
	return nil
}

// toCents конвертирует сумму в минимальные единицы валюты
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
