package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestChannelName(t *testing.T) {
	if got := Channel(42); got != "deck:42" {
		t.Errorf("expected deck:42, got %s", got)
	}
}

func TestRedisPublish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel(3))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("failed to subscribe: %s", err)
	}

	n := NewRedis(client, nil)
	n.Publish(ctx, 3, "add", map[string]string{"id": "abc"})

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	if err != nil {
		t.Fatalf("failed to receive message: %s", err)
	}

	var event Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		t.Fatalf("failed to unmarshal event: %s", err)
	}
	if event.Deck != 3 || event.Action != "add" {
		t.Errorf("unexpected event %+v", event)
	}
	payload, ok := event.Payload.(map[string]any)
	if !ok || payload["id"] != "abc" {
		t.Errorf("unexpected payload %+v", event.Payload)
	}
}

func TestRedisPublishUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	// Failures are swallowed; the call must not panic or block.
	n := NewRedis(client, nil)
	n.Publish(context.Background(), 1, "end", nil)
}
