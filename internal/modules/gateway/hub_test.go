package gateway

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPushToUserNeverBlocks(t *testing.T) {
	h := NewHub(nil, zap.NewNop(), nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < outboundBuffer+10; i++ {
			h.PushToUser(context.Background(), 1, "NOTIFICATION_CREATED", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PushToUser blocked with a full queue")
	}
	if len(h.outbound) != outboundBuffer {
		t.Errorf("queued = %d, want %d", len(h.outbound), outboundBuffer)
	}
}

func TestRunDrainsLocallyWithoutRedis(t *testing.T) {
	h := NewHub(nil, zap.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	h.PushToUser(ctx, 42, "NOTIFICATION_CREATED", map[string]string{"message": "booked"})
	deadline := time.Now().Add(2 * time.Second)
	for len(h.outbound) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if len(h.outbound) != 0 {
		t.Error("outbound queue not drained")
	}
	if h.OnlineCount(42) != 0 {
		t.Errorf("OnlineCount = %d", h.OnlineCount(42))
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestTokenHelpers(t *testing.T) {
	values := map[string][]string{"Authorization": {" Bearer abc "}, "token": {""}}
	if got := firstValueFromMultiMap(values, "authorization"); got != "Bearer abc" {
		t.Errorf("header lookup = %q", got)
	}
	if got := firstValueFromMultiMap(values, "token"); got != "" {
		t.Errorf("empty token lookup = %q", got)
	}
	if got := normalizeToken("bearer  xyz"); got != "xyz" {
		t.Errorf("normalizeToken = %q", got)
	}
}
