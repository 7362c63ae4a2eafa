package parallel

import (
	"sync"
	"time"

	"github.com/YuminosukeSato/sharp/pkg/log"
)

// Progress receives completion notifications from Map. Implementations must
// be safe for concurrent use and must not block.
type Progress interface {
	Start(total int)
	Advance(completed, total int)
	Finish()
}

// LogProgress reports progress through a structured logger, emitting one
// record each time another tenth of the tasks has completed.
type LogProgress struct {
	logger    log.Logger
	operation string

	mu      sync.Mutex
	started time.Time
	lastPct int
}

// NewLogProgress returns a Progress that logs under the given operation name.
func NewLogProgress(logger log.Logger, operation string) *LogProgress {
	return &LogProgress{logger: logger, operation: operation}
}

func (p *LogProgress) Start(total int) {
	p.mu.Lock()
	p.started = time.Now()
	p.lastPct = 0
	p.mu.Unlock()
	p.logger.Info("Tasks started", log.OperationKey, p.operation, log.TotalKey, total)
}

func (p *LogProgress) Advance(completed, total int) {
	pct := completed * 10 / total
	p.mu.Lock()
	if pct <= p.lastPct {
		p.mu.Unlock()
		return
	}
	p.lastPct = pct
	p.mu.Unlock()
	p.logger.Info("Tasks progress",
		log.OperationKey, p.operation,
		log.CompletedKey, completed,
		log.TotalKey, total,
	)
}

func (p *LogProgress) Finish() {
	p.mu.Lock()
	elapsed := time.Since(p.started)
	p.mu.Unlock()
	p.logger.Info("Tasks finished",
		log.OperationKey, p.operation,
		log.DurationMsKey, elapsed.Milliseconds(),
	)
}
