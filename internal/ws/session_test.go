package ws

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
)

const wsTestSecret = "ws-secret-para-tests-0123456789"

type wsFixture struct {
	hub    *Hub
	issuer *envelope.Issuer
	conn   *websocket.Conn
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	opts := envelope.Options{Secret: wsTestSecret, Issuer: "comandero", TTL: time.Hour}
	issuer := envelope.NewIssuer(opts)
	hub := NewHub()
	handler := NewHandler(hub, HandlerConfig{Verifier: envelope.NewVerifier(opts)})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &wsFixture{hub: hub, issuer: issuer, conn: conn}
}

func (f *wsFixture) sendFrame(t *testing.T, fr *frame.Frame) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, frame.NewWriter(&buf).Write(fr))
	require.NoError(t, f.conn.WriteMessage(websocket.TextMessage, buf.Bytes()))
}

func (f *wsFixture) readFrame(t *testing.T) *frame.Frame {
	t.Helper()
	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := f.conn.ReadMessage()
	require.NoError(t, err)
	fr, err := frame.NewReader(bytes.NewReader(data)).Read()
	require.NoError(t, err)
	require.NotNil(t, fr)
	return fr
}

func (f *wsFixture) connect(t *testing.T, token string) *frame.Frame {
	t.Helper()
	f.sendFrame(t, frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.2",
		"Authorization", "Bearer "+token,
	))
	return f.readFrame(t)
}

func TestConnect_ValidToken(t *testing.T) {
	f := newWSFixture(t)
	tok, err := f.issuer.Issue("mesero@bar.test", []string{auth.RoleUser})
	require.NoError(t, err)

	resp := f.connect(t, tok)
	assert.Equal(t, frame.CONNECTED, resp.Command)
	assert.Equal(t, "1.2", resp.Header.Get(frame.Version))
}

func TestConnect_MissingTokenRejected(t *testing.T) {
	f := newWSFixture(t)

	f.sendFrame(t, frame.New(frame.CONNECT, frame.AcceptVersion, "1.2"))
	resp := f.readFrame(t)

	assert.Equal(t, frame.ERROR, resp.Command)
	assert.Contains(t, resp.Header.Get(frame.Message), "missing bearer token")
}

func TestConnect_GarbageTokenRejected(t *testing.T) {
	f := newWSFixture(t)

	resp := f.connect(t, "no-es-un-token")
	assert.Equal(t, frame.ERROR, resp.Command)
}

func TestSubscribe_ReceivesOrderEvents(t *testing.T) {
	f := newWSFixture(t)
	tok, err := f.issuer.Issue("mesero@bar.test", []string{auth.RoleUser})
	require.NoError(t, err)

	require.Equal(t, frame.CONNECTED, f.connect(t, tok).Command)

	f.sendFrame(t, frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-0",
		frame.Destination, TopicOrders,
		frame.Receipt, "r-1",
	))
	receipt := f.readFrame(t)
	require.Equal(t, frame.RECEIPT, receipt.Command)
	assert.Equal(t, "r-1", receipt.Header.Get(frame.ReceiptId))

	order := &types.Order{ID: "o-1", TableID: "t-1", UserEmail: "mesero@bar.test", Status: types.OrderPending}
	f.hub.OrderCreated(order)

	msg := f.readFrame(t)
	require.Equal(t, frame.MESSAGE, msg.Command)
	assert.Equal(t, TopicOrders, msg.Header.Get(frame.Destination))
	assert.Equal(t, "sub-0", msg.Header.Get(frame.Subscription))

	var ev OrderEvent
	require.NoError(t, json.Unmarshal(msg.Body, &ev))
	assert.Equal(t, "order_created", ev.Event)
	assert.Equal(t, "o-1", ev.Order.ID)
}

func TestSubscribe_BeforeConnectRejected(t *testing.T) {
	f := newWSFixture(t)

	f.sendFrame(t, frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-0",
		frame.Destination, TopicOrders,
	))
	resp := f.readFrame(t)
	assert.Equal(t, frame.ERROR, resp.Command)
}

func TestSend_NotAllowed(t *testing.T) {
	f := newWSFixture(t)
	tok, err := f.issuer.Issue("mesero@bar.test", []string{auth.RoleUser})
	require.NoError(t, err)

	require.Equal(t, frame.CONNECTED, f.connect(t, tok).Command)

	send := frame.New(frame.SEND, frame.Destination, TopicOrders)
	send.Body = []byte(`{"hack":true}`)
	f.sendFrame(t, send)

	resp := f.readFrame(t)
	assert.Equal(t, frame.ERROR, resp.Command)
	assert.Contains(t, resp.Header.Get(frame.Message), "SEND not allowed")
}

func TestSubscribe_FrameTokenRevalidated(t *testing.T) {
	f := newWSFixture(t)
	tok, err := f.issuer.Issue("mesero@bar.test", []string{auth.RoleUser})
	require.NoError(t, err)

	require.Equal(t, frame.CONNECTED, f.connect(t, tok).Command)

	// Un token inválido en el SUBSCRIBE corta la sesión aunque el CONNECT
	// original fuera válido
	f.sendFrame(t, frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-0",
		frame.Destination, TopicOrders,
		"Authorization", "Bearer basura",
	))
	resp := f.readFrame(t)
	assert.Equal(t, frame.ERROR, resp.Command)
}

func TestSubscribe_AdminTopicGatedByRole(t *testing.T) {
	f := newWSFixture(t)
	tok, err := f.issuer.Issue("mesero@bar.test", []string{auth.RoleUser})
	require.NoError(t, err)

	require.Equal(t, frame.CONNECTED, f.connect(t, tok).Command)

	f.sendFrame(t, frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-0",
		frame.Destination, TopicAdminOrders,
	))
	resp := f.readFrame(t)
	assert.Equal(t, frame.ERROR, resp.Command)
	assert.Contains(t, resp.Header.Get(frame.Message), "ADMIN")
}

func TestSubscribe_AdminTopicAllowedForAdmin(t *testing.T) {
	f := newWSFixture(t)
	tok, err := f.issuer.Issue("admin@bar.test", []string{auth.RoleAdmin})
	require.NoError(t, err)

	require.Equal(t, frame.CONNECTED, f.connect(t, tok).Command)

	f.sendFrame(t, frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-0",
		frame.Destination, TopicAdminOrders,
		frame.Receipt, "r-1",
	))
	receipt := f.readFrame(t)
	require.Equal(t, frame.RECEIPT, receipt.Command)

	f.hub.OrderStatusChanged(&types.Order{ID: "o-9", Status: types.OrderPreparing})

	msg := f.readFrame(t)
	require.Equal(t, frame.MESSAGE, msg.Command)
	assert.Equal(t, TopicAdminOrders, msg.Header.Get(frame.Destination))
}

func TestUnsubscribe_StopsEvents(t *testing.T) {
	f := newWSFixture(t)
	tok, err := f.issuer.Issue("mesero@bar.test", []string{auth.RoleUser})
	require.NoError(t, err)

	require.Equal(t, frame.CONNECTED, f.connect(t, tok).Command)

	f.sendFrame(t, frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-0",
		frame.Destination, TopicOrders,
		frame.Receipt, "r-1",
	))
	require.Equal(t, frame.RECEIPT, f.readFrame(t).Command)

	f.sendFrame(t, frame.New(frame.UNSUBSCRIBE, frame.Id, "sub-0"))

	// Dar tiempo a que el unsubscribe se procese antes de publicar
	require.Eventually(t, func() bool {
		f.hub.mu.RLock()
		defer f.hub.mu.RUnlock()
		for _, m := range f.hub.subs {
			if len(m) != 0 {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	f.hub.OrderCreated(&types.Order{ID: "o-2"})

	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = f.conn.ReadMessage()
	assert.Error(t, err) // timeout: no llegó ningún frame
}
