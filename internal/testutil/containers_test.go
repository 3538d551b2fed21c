package testutil

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStartMosquitto(t *testing.T) {
	RequireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	url := StartMosquitto(ctx, t)
	if !strings.HasPrefix(url, "tcp://") || strings.HasSuffix(url, ":") {
		t.Fatalf("unexpected broker url %q", url)
	}
	if err := WaitForMQTT(url, 5*time.Second); err != nil {
		t.Fatalf("broker unreachable: %v", err)
	}
}
