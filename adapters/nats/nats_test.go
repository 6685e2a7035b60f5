package nats

import (
	"testing"
	"time"
)

func TestSubscriberConfig_Defaults(t *testing.T) {
	cfg := SubscriberConfig{}.applyDefaults()
	if cfg.BufferSize != 256 {
		t.Errorf("BufferSize = %d, want 256", cfg.BufferSize)
	}
	if cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want 5s", cfg.ConnectTimeout)
	}
	if cfg.Logger == nil {
		t.Error("expected default logger")
	}
}

func TestSubscriberConfig_ExplicitValuesKept(t *testing.T) {
	cfg := SubscriberConfig{
		BufferSize:     8,
		ConnectTimeout: time.Second,
	}.applyDefaults()
	if cfg.BufferSize != 8 || cfg.ConnectTimeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestPublisherConfig_Defaults(t *testing.T) {
	cfg := PublisherConfig{}.applyDefaults()
	if cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want 5s", cfg.ConnectTimeout)
	}
	if cfg.FlushTimeout != time.Second {
		t.Errorf("FlushTimeout = %v, want 1s", cfg.FlushTimeout)
	}
}

func TestPublisher_PublishBeforeConnect(t *testing.T) {
	p := NewPublisher(PublisherConfig{Subject: "orders.created"})
	if err := p.Publish([]byte("x")); err == nil {
		t.Fatal("expected error publishing before Connect")
	}
}

func TestPublisher_CloseWithoutConnect(t *testing.T) {
	p := NewPublisher(PublisherConfig{})
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
