package txmanager

import (
	"math"
	"time"
)

// RetryPolicy параметры экспоненциальной задержки между повторами транзакции
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy политика повторов по умолчанию
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:    5,
	InitialDelay:  10 * time.Millisecond,
	MaxDelay:      500 * time.Millisecond,
	BackoffFactor: 2,
}

// NextDelay возвращает задержку перед попыткой attempt (нумерация с 1)
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = DefaultRetryPolicy.InitialDelay
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	d := time.Duration(float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = r.InitialDelay
	}
	return d
}
