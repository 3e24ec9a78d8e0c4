package httpx

import (
	"context"
	"net/http"
	"sync"
)

// InFlight counts running handlers so shutdown can wait for them before
// closing what they publish to.
type InFlight struct {
	wg sync.WaitGroup
}

func (f *InFlight) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.wg.Add(1)
		defer f.wg.Done()
		next.ServeHTTP(w, r)
	})
}

// Wait blocks until every tracked handler returned or ctx is done.
func (f *InFlight) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
