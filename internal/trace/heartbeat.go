package trace

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StartHeartbeat emits a driver-scope heartbeat event every interval until
// ctx is done or the returned stop function is called. A trace that keeps
// beating without span ends points at a stuck layout run. stop waits for
// the last event and may be called more than once.
func StartHeartbeat(ctx context.Context, t Tracer, interval time.Duration) (stop func()) {
	if t == nil || !t.Enabled() || interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	started := time.Now()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.Emit(&Event{
					Time:   now,
					Kind:   KindHeartbeat,
					Scope:  ScopeDriver,
					GID:    getGoroutineID(),
					Name:   "heartbeat",
					Detail: fmt.Sprintf("#%d after %s", n, now.Sub(started).Round(time.Millisecond)),
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
