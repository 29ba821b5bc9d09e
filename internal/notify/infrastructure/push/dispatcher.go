package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

// BatchSize is the provider-imposed fan-out ceiling per gateway call.
const BatchSize = 500

// DefaultSendTimeout bounds each individual gateway send.
const DefaultSendTimeout = 5 * time.Second

// Result summarizes one dispatch: how many sends succeeded, which tokens the
// gateway declared dead (and were pruned), and which failed transiently
// (left registered, not retried).
type Result struct {
	Sent      int      `json:"sent"`
	Invalid   []string `json:"invalid,omitempty"`
	Transient []string `json:"transient,omitempty"`
}

// Dispatcher reads a user's token list, fans the message out in bounded
// batches and prunes invalid tokens afterwards. It never returns an error:
// push delivery is best effort and failures are absorbed into the Result.
type Dispatcher struct {
	gateway  Gateway
	registry domain.TokenRegistry
	timeout  time.Duration
	logger   *slog.Logger
}

func NewDispatcher(gateway Gateway, registry domain.TokenRegistry, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{gateway: gateway, registry: registry, timeout: timeout, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, userID uuid.UUID, msg Message) Result {
	var res Result

	tokens, err := d.registry.List(ctx, userID)
	if err != nil {
		d.logger.Error("push: listing device tokens failed", "user_id", userID, "error", err)
		return res
	}
	if len(tokens) == 0 {
		return res
	}

	type sendOutcome struct {
		token string
		err   error
	}

	for _, batch := range chunk(tokens, BatchSize) {
		outcomes := make(chan sendOutcome, len(batch))
		var wg sync.WaitGroup
		for _, token := range batch {
			wg.Add(1)
			go func(token string) {
				defer wg.Done()
				sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
				defer cancel()
				outcomes <- sendOutcome{token: token, err: d.gateway.Send(sendCtx, token, msg)}
			}(token)
		}
		wg.Wait()
		close(outcomes)

		for out := range outcomes {
			switch {
			case out.err == nil:
				res.Sent++
			case errors.Is(out.err, ErrInvalidToken):
				res.Invalid = append(res.Invalid, out.token)
			default:
				res.Transient = append(res.Transient, out.token)
				d.logger.Warn("push: transient send failure", "user_id", userID, "error", out.err)
			}
		}
	}

	if len(res.Invalid) > 0 {
		if err := d.registry.Remove(ctx, userID, res.Invalid); err != nil {
			d.logger.Error("push: pruning invalid tokens failed", "user_id", userID, "error", err)
		} else {
			tokensPruned.Add(float64(len(res.Invalid)))
		}
	}

	pushesSent.Add(float64(res.Sent))
	pushFailures.WithLabelValues("invalid").Add(float64(len(res.Invalid)))
	pushFailures.WithLabelValues("transient").Add(float64(len(res.Transient)))

	return res
}

// chunk splits tokens into ordered batches of at most size entries.
func chunk(tokens domain.DeviceTokenList, size int) []domain.DeviceTokenList {
	if len(tokens) == 0 {
		return nil
	}
	batches := make([]domain.DeviceTokenList, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		batches = append(batches, tokens[start:end])
	}
	return batches
}
