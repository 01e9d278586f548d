package channel

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAddTakeFIFO(t *testing.T) {
	nc := New("peer-a")
	nc.Add([][]byte{[]byte("1")})
	nc.Add([][]byte{[]byte("2")})

	ctx := context.Background()
	first, err := nc.Take(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first[0]) != "1" {
		t.Fatalf("expected first message to be %q, got %q", "1", first[0])
	}

	second, err := nc.Take(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second[0]) != "2" {
		t.Fatalf("expected second message to be %q, got %q", "2", second[0])
	}
}

func TestHasMessageAndDepth(t *testing.T) {
	nc := New("peer-b")
	if nc.HasMessage() {
		t.Fatal("expected empty channel to report no message")
	}
	if nc.Depth() != 0 {
		t.Fatalf("expected depth 0, got %d", nc.Depth())
	}

	nc.Add([][]byte{[]byte("x")})
	if !nc.HasMessage() {
		t.Fatal("expected channel to report a message after Add")
	}
	if nc.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", nc.Depth())
	}
}

func TestTakeBlocksUntilAdd(t *testing.T) {
	nc := New("peer-c")
	done := make(chan struct{})

	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if _, err := nc.Take(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	nc.Add([][]byte{[]byte("late")})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Take did not unblock after Add")
	}
}

func TestTakeRespectsContextCancellation(t *testing.T) {
	nc := New("peer-d")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := nc.Take(ctx); err == nil {
		t.Fatal("expected an error from an already-cancelled context")
	}
}
