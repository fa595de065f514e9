package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andes-labs/backend-precios/internal/queue"
)

// Worker consumes order line tasks and persists them. It is plugged into a
// queue.Worker as its handler.
type Worker struct {
	Store  Store
	Logger zerolog.Logger
}

// Handle decodes one task and writes its lines. A returned error makes the
// queue retry and eventually dead-letter the task.
func (w *Worker) Handle(ctx context.Context, task queue.Task) error {
	if w == nil || w.Store == nil {
		return ErrStoreUnavailable
	}
	var payload batchPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		// Malformed payloads never become valid; log and ack.
		w.Logger.Error().Err(err).Msg("audit: drop malformed task")
		return nil
	}
	if len(payload.Lines) == 0 {
		return nil
	}
	if err := w.Store.InsertOrderLines(ctx, payload.Lines); err != nil {
		return fmt.Errorf("audit: insert order lines %s: %w", payload.OrderNumber, err)
	}
	w.Logger.Debug().
		Str("order_number", payload.OrderNumber).
		Int("lines", len(payload.Lines)).
		Msg("audit: order lines persisted")
	return nil
}
