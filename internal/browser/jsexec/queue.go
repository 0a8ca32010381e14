// internal/browser/jsexec/queue.go
package jsexec

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"go.uber.org/zap"

	"github.com/xkilldash9x/unitbrowser/internal/browser/promise"
)

// LoopQueue is a promise.JobQueue that runs each job as a task on an event loop, so
// promise reactions execute on the goroutine that owns the VM.
type LoopQueue struct {
	loop   *eventloop.EventLoop
	logger *zap.Logger
}

var _ promise.JobQueue = (*LoopQueue)(nil)

// NewLoopQueue creates a queue scheduling on loop.
func NewLoopQueue(loop *eventloop.EventLoop, logger *zap.Logger) *LoopQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoopQueue{loop: loop, logger: logger}
}

// Enqueue schedules job. Jobs submitted after the loop has stopped are dropped.
func (q *LoopQueue) Enqueue(job promise.Job) {
	if job == nil {
		return
	}
	if !q.loop.RunOnLoop(func(*goja.Runtime) { job() }) {
		q.logger.Warn("Event loop is not running, dropping promise job.")
	}
}
