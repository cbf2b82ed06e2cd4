package broker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fxsentinel/pkg/id"
)

// ErrRetriesExhausted marks a definitive order failure: the retry bound was
// reached without the terminal accepting the request. Callers must not open
// a position or mutate trailing-stop state when they see it.
var ErrRetriesExhausted = errors.New("order retries exhausted")

// Executor submits trade requests with a bounded retry policy:
//
//	done        -> success, return immediately
//	no-changes  -> idempotent no-op, success without resubmission
//	requote     -> transient, pause and retry
//	anything else (including transport errors) -> pause and retry
//
// Exhausting the bound yields ErrRetriesExhausted.
type Executor struct {
	broker     Broker
	maxRetries int
	pause      time.Duration

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

// NewExecutor wraps broker with the retry bound and the pause between
// attempts.
func NewExecutor(b Broker, maxRetries int, pause time.Duration) *Executor {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Executor{broker: b, maxRetries: maxRetries, pause: pause, sleep: time.Sleep}
}

// Submit runs the request through the retry policy. Every submission gets
// one client id shared by all of its attempts, so the terminal can tell a
// retry apart from a new intent.
func (e *Executor) Submit(ctx context.Context, req TradeRequest) (TradeResult, error) {
	if req.ClientID == "" {
		req.ClientID = id.New()
	}

	var last TradeResult
	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		res, err := e.broker.OrderSend(ctx, req)
		if err != nil {
			lastErr = err
			log.Printf("[%s] order attempt %d/%d transport error: %v", req.Symbol, attempt, e.maxRetries, err)
		} else {
			last, lastErr = res, nil
			switch res.Retcode {
			case RetDone:
				log.Printf("[%s] order accepted: %s vol %.2f ticket %d", req.Symbol, req.Action, req.Volume, res.Ticket)
				return res, nil
			case RetNoChanges:
				log.Printf("[%s] order already applied, nothing to change: %s", req.Symbol, res.Comment)
				return res, nil
			case RetRequote:
				log.Printf("[%s] requote on attempt %d/%d, retrying", req.Symbol, attempt, e.maxRetries)
			default:
				log.Printf("[%s] order rejected on attempt %d/%d: code %d %s", req.Symbol, attempt, e.maxRetries, res.Retcode, res.Comment)
			}
		}

		if attempt < e.maxRetries {
			e.sleep(e.pause)
		}
	}

	if lastErr != nil {
		return last, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, e.maxRetries, lastErr)
	}
	return last, fmt.Errorf("%w after %d attempts: last code %d %s", ErrRetriesExhausted, e.maxRetries, last.Retcode, last.Comment)
}
