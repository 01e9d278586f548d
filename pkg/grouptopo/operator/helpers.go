package operator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
)

// requireReady enforces spec.md's linear state machine: every collective
// primitive raises ErrNotInitialized in Uninitialized and ErrClosed in
// Closed.
func (t *Topology[T]) requireReady() error {
	t.mu.Lock()
	st := t.st
	t.mu.Unlock()

	switch st {
	case stateClosed:
		return ErrClosed
	case stateUninitialized:
		return ErrNotInitialized
	default:
		return nil
	}
}

// boundedCtx derives a context that is done when ctx is done, when the
// topology is closed, or when timeout_ms elapses — whichever comes
// first. The returned cancel must always be called to release the
// background goroutine that watches the topology's own lifetime.
func (t *Topology[T]) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancelMerge := mergeDone(ctx, t.ctx)
	timed, cancelTimeout := context.WithTimeout(merged, time.Duration(t.cfg.TimeoutMillis)*time.Millisecond)
	return timed, func() {
		cancelTimeout()
		cancelMerge()
	}
}

// mergeDone returns a context cancelled when either a or b is done.
func mergeDone(a, b context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(a)
	stop := make(chan struct{})
	go func() {
		select {
		case <-b.Done():
			cancel()
		case <-merged.Done():
		case <-stop:
		}
	}()
	return merged, func() {
		cancel()
		close(stop)
	}
}

// translateWaitErr maps a context error from a blocking receive into the
// spec.md error kind a caller expects: ReceiveTimeoutError naming the
// still-pending peers, or ErrCancelled if the topology or the caller's
// own context was cancelled.
func (t *Topology[T]) translateWaitErr(err error, pending []ids.TaskID) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ReceiveTimeoutError{Pending: pending}
	}
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return err
}

func errPeerUnregistered(peer ids.TaskID) error {
	return fmt.Errorf("peer %s not yet registered with the name service", peer)
}

// isNilValue reports whether v is a nil pointer/interface/map/slice/chan
// value — the closest Go equivalent of spec.md's "value == null" check
// for a generically typed argument.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
