// Package testutil starts disposable brokers and databases for integration
// tests gated by DOCKER_AVAILABLE.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RequireDocker skips t in short mode or when DOCKER_AVAILABLE is not
// "true" or "1".
func RequireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("short mode")
	}
	if v := os.Getenv("DOCKER_AVAILABLE"); v != "true" && v != "1" {
		t.Skip("docker not available")
	}
}

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

// StartMosquitto runs an anonymous Mosquitto broker and returns its URL. The
// container is terminated when the test ends.
func StartMosquitto(ctx context.Context, t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	if err := os.WriteFile(path, []byte(mosquittoConf), 0o644); err != nil {
		t.Fatalf("write mosquitto.conf: %v", err)
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	url := start(ctx, t, req, "1883/tcp", "tcp")
	if err := WaitForMQTT(url, 10*time.Second); err != nil {
		t.Fatalf("mosquitto not ready: %v", err)
	}
	return url
}

// StartInflux runs InfluxDB 2.7 initialised with the given org, bucket and
// admin token, and returns its base URL.
func StartInflux(ctx context.Context, t *testing.T, org, bucket, token string) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "dockflow",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "dockflow-password",
			"DOCKER_INFLUXDB_INIT_ORG":         org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": token,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	return start(ctx, t, req, "8086/tcp", "http")
}

func start(ctx context.Context, t *testing.T, req tc.ContainerRequest, port nat.Port, scheme string) string {
	t.Helper()
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := cont.Terminate(context.Background()); err != nil {
			t.Logf("terminate %s: %v", req.Image, err)
		}
	})
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mapped, err := cont.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port())
}

// WaitForMQTT polls broker until a client can connect.
func WaitForMQTT(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("dockflow-wait")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

// AckMoves subscribes to every truck move topic under prefix and
// acknowledges each order on ackTopic. It returns a channel receiving the
// raw move payloads.
func AckMoves(t *testing.T, broker, prefix, ackTopic string) <-chan []byte {
	t.Helper()
	moves := make(chan []byte, 16)
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("truck-sim")
	cli := paho.NewClient(opts)
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("truck connect: %v", tok.Error())
	}
	t.Cleanup(func() { cli.Disconnect(100) })
	handler := func(c paho.Client, m paho.Message) {
		payload := append([]byte(nil), m.Payload()...)
		var order struct {
			CommandID string `json:"command_id"`
		}
		if err := json.Unmarshal(payload, &order); err == nil && order.CommandID != "" {
			ack := fmt.Sprintf(`{"command_id":%q}`, order.CommandID)
			c.Publish(ackTopic, 1, false, ack)
		}
		select {
		case moves <- payload:
		default:
		}
	}
	if tok := cli.Subscribe(prefix+"/truck/+/move", 1, handler); tok.Wait() && tok.Error() != nil {
		t.Fatalf("truck subscribe: %v", tok.Error())
	}
	return moves
}
