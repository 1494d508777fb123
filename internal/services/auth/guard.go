package services

import (
	"context"
	"fmt"
	"time"
)

// Counter — счётчик с окном, реализуется cache.Cache.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Invalidate(ctx context.Context, key string) error
}

// CounterGuard пропускает не больше maxAttempts попыток входа по email
// в пределах окна window. Окно отсчитывается от первой попытки после сброса,
// успешный вход сбрасывает счётчик.
type CounterGuard struct {
	counter     Counter
	maxAttempts int
	window      time.Duration
}

// NewCounterGuard создаёт CounterGuard. maxAttempts <= 0 отключает блокировку.
func NewCounterGuard(counter Counter, maxAttempts int, window time.Duration) *CounterGuard {
	return &CounterGuard{
		counter:     counter,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Attempt учитывает попытку входа и возвращает ErrTooManyAttempts, если она
// превышает лимит. Решение принимается по значению, которое вернул сам
// инкремент, поэтому параллельные попытки не проходят сверх лимита.
func (g *CounterGuard) Attempt(ctx context.Context, email string) error {
	const op = "services.guard.Attempt"
	if g.maxAttempts <= 0 {
		return nil
	}
	n, err := g.counter.Incr(ctx, guardKey(email), g.window)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > int64(g.maxAttempts) {
		return ErrTooManyAttempts
	}
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (g *CounterGuard) Reset(ctx context.Context, email string) error {
	const op = "services.guard.Reset"
	if g.maxAttempts <= 0 {
		return nil
	}
	if err := g.counter.Invalidate(ctx, guardKey(email)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func guardKey(email string) string {
	return "login_failures:" + email
}
