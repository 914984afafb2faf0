package widget

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned stop function is
// called. Stop must be safe to call more than once.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler is the production Scheduler backed by time.Ticker.
type TickerScheduler struct{}

// Every starts a ticker goroutine. Each tick calls fn on its own goroutine so
// a slow call never delays or swallows the next tick.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		for {
			select {
			case <-ticker.C:
				go fn()
			case <-stopCh:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stopCh)
			<-doneCh
		})
	}
}
