// Package broadcast fans announcements out to every known person through a
// bounded worker pool. Failures are isolated per recipient: a blocked bot
// or a dead account reduces the delivered count and nothing else.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pxc1984/musicclubbot/club"
	"github.com/pxc1984/musicclubbot/core/logger"
)

const defaultWorkers = 4

// Pool sends one message to every person via the notifier.
type Pool struct {
	people  club.PersonRepo
	notify  club.Notifier
	workers int
}

// New builds a pool. workers <= 0 selects the default.
func New(people club.PersonRepo, notify club.Notifier, workers int) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pool{people: people, notify: notify, workers: workers}
}

// SendAll delivers text to every person and reports how many deliveries
// succeeded. It blocks until every recipient was attempted or the context
// is cancelled; cancellation counts unattempted recipients as failed.
func (p *Pool) SendAll(ctx context.Context, text string) (delivered, total int, err error) {
	people, err := p.people.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("broadcast: list people: %w", err)
	}
	total = len(people)
	if total == 0 {
		return 0, 0, nil
	}

	jobs := make(chan club.Person)
	var ok atomic.Int64
	var wg sync.WaitGroup

	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			for person := range jobs {
				if err := p.notify.Notify(ctx, person.ID, text); err != nil {
					logger.Warn(ctx, "broadcast", "delivery.failed",
						slog.Int64("person_id", person.ID),
						slog.String("err", err.Error()),
					)
					continue
				}
				ok.Add(1)
			}
		}()
	}

feed:
	for _, person := range people {
		select {
		case jobs <- person:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	delivered = int(ok.Load())
	logger.Info(ctx, "broadcast", "completed",
		slog.Int("delivered", delivered),
		slog.Int("failed", total-delivered),
		slog.Int("count", total),
	)
	return delivered, total, nil
}
