package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/dockflow/core/model"
	coremqtt "github.com/kilianp07/dockflow/core/mqtt"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestConfigDefaultsAndTopics(t *testing.T) {
	cfg := Config{Broker: "tcp://localhost:1883"}
	cfg.SetDefaults()
	if cfg.PlanTopic() != "dockflow/plans" || cfg.MoveTopic(2) != "dockflow/truck/2/move" {
		t.Fatalf("unexpected topics %s %s", cfg.PlanTopic(), cfg.MoveTopic(2))
	}
	if cfg.AckTopic != "dockflow/ack" {
		t.Fatalf("ack topic %s", cfg.AckTopic)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cfg.UseTLS = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected tls validation error")
	}
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("disabled config should validate: %v", err)
	}
}

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func samplePlan() model.RebalancingPlan {
	return model.RebalancingPlan{
		ID:     "plan-1",
		Status: model.StatusPlan,
		Moves: []model.PlannedMove{
			{CandidateMove: model.CandidateMove{DonorStationID: "A", ReceiverStationID: "B", Quantity: 3}, Truck: 1, TravelMinutes: 5},
			{CandidateMove: model.CandidateMove{DonorStationID: "C", ReceiverStationID: "D", Quantity: 2}, Truck: 2, TravelMinutes: 10},
		},
		CreatedAt: time.Now(),
	}
}

func TestQoSSettings(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", AckTopic: "a", AckTimeoutMS: 100,
		QoS: map[string]byte{"plan": 1, "move": 2, "ack": 1}}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if len(mc.subscribed) == 0 || mc.subscribed[0].qos != 1 || mc.subscribed[0].topic != "a" {
		t.Fatalf("subscribe qos not applied")
	}
	ids, err := cli.PublishPlan(context.Background(), samplePlan())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 command ids, got %d", len(ids))
	}
	if len(mc.published) != 3 {
		t.Fatalf("expected plan + 2 moves, got %d", len(mc.published))
	}
	if mc.published[0].topic != "dockflow/plans" || mc.published[0].qos != 1 {
		t.Fatalf("plan publish wrong: %+v", mc.published[0])
	}
	if mc.published[2].topic != "dockflow/truck/2/move" || mc.published[2].qos != 2 {
		t.Fatalf("move publish wrong: %+v", mc.published[2])
	}
	var order MoveOrder
	if err := json.Unmarshal(mc.published[1].payload, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.CommandID != ids[0] || order.PlanID != "plan-1" || order.Quantity != 3 || order.DonorStationID != "A" {
		t.Fatalf("unexpected order %+v", order)
	}
	payload := fmt.Sprintf(`{"command_id":"%s"}`, ids[0])
	cli.onAck(nil, mockMessage{[]byte(payload)})
	ok, err := cli.WaitForAck(ids[0], time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("ack wait failed: %v", err)
	}
}

func TestPlanMessagePayload(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", RetainPlan: true})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err := cli.PublishPlan(context.Background(), samplePlan()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !mc.published[0].retained {
		t.Fatalf("plan should be retained")
	}
	var msg PlanMessage
	if err := json.Unmarshal(mc.published[0].payload, &msg); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if msg.PlanID != "plan-1" || msg.Bikes != 5 || len(msg.Moves) != 2 {
		t.Fatalf("unexpected plan message %+v", msg)
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMock(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	plan := samplePlan()
	plan.Moves = plan.Moves[:1]
	if _, err := cli.PublishPlan(context.Background(), plan); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 3 {
		t.Fatalf("expected retried plan + 1 move, got %d", len(mc.published))
	}
}

func TestWaitForAckTimeout(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id", AckTimeoutMS: 100})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ids, _ := cli.PublishPlan(context.Background(), samplePlan())
	ok, err := cli.WaitForAck(ids[0], time.Millisecond)
	if !errors.Is(err, coremqtt.ErrAckTimeout) || ok {
		t.Fatalf("expected timeout, got %v", err)
	}
	if _, err := cli.WaitForAck("nope", time.Millisecond); !errors.Is(err, coremqtt.ErrUnknownCommand) {
		t.Fatalf("expected unknown command, got %v", err)
	}
}

func TestPublishPlan_NoAckTrackingWithoutTimeout(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	for i := 0; i < 3; i++ {
		ids, err := cli.PublishPlan(context.Background(), samplePlan())
		if err != nil || len(ids) != 2 {
			t.Fatalf("publish: %v %v", ids, err)
		}
	}
	cli.mu.Lock()
	pending := len(cli.ackChans)
	cli.mu.Unlock()
	if pending != 0 {
		t.Fatalf("expected no tracked commands got %d", pending)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	ids, err := p.PublishPlan(context.Background(), samplePlan())
	if err != nil || len(ids) != 0 {
		t.Fatalf("nop publisher should drop plans")
	}
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published []published
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic: topic, qos: qos, retained: retained, payload: b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct{ p []byte }

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return "" }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
