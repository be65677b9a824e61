package ws

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/metrics"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// HandlerConfig configura el endpoint WebSocket.
type HandlerConfig struct {
	Verifier *envelope.Verifier
	// Header y Prefix replican la convención del filtro HTTP, pero en los
	// headers del frame CONNECT.
	Header string
	Prefix string
	// CheckOrigin permite restringir orígenes del upgrade. nil acepta todos
	// (el token ya autentica; CSRF no aplica a tokens por header).
	CheckOrigin func(r *http.Request) bool
}

// Handler hace el upgrade a WebSocket y atiende el diálogo STOMP.
type Handler struct {
	hub      *Hub
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

// NewHandler crea el handler del endpoint /ws.
func NewHandler(hub *Hub, cfg HandlerConfig) *Handler {
	if cfg.Header == "" {
		cfg.Header = "Authorization"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "Bearer "
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			Subprotocols:    []string{"v12.stomp", "v11.stomp"},
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP maneja GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya escribió la respuesta de error
		return
	}

	s := &session{
		hub:  h.hub,
		cfg:  h.cfg,
		conn: conn,
		out:  make(chan *frame.Frame, sendBuffer),
	}
	go s.writeLoop()
	s.readLoop()
}

// session es una conexión STOMP viva. El principal se fija en el CONNECT
// y no cambia durante la vida de la conexión.
type session struct {
	hub  *Hub
	cfg  HandlerConfig
	conn *websocket.Conn
	out  chan *frame.Frame

	principal auth.Principal
	connected bool

	closeOnce sync.Once
}

// send encola un frame saliente. Si el buffer está lleno el frame se
// descarta: una sesión lenta no puede frenar al hub.
func (s *session) send(f *frame.Frame) {
	select {
	case s.out <- f:
	default:
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		s.hub.removeSession(s)
		close(s.out)
	})
}

// writeLoop serializa los frames salientes en mensajes de texto.
func (s *session) writeLoop() {
	for f := range s.out {
		var buf bytes.Buffer
		if err := frame.NewWriter(&buf).Write(f); err != nil {
			continue
		}
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
			return
		}
	}
	// Canal cerrado: despedida limpia
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = s.conn.Close()
}

// readLoop procesa frames entrantes hasta que la conexión muera.
func (s *session) readLoop() {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		// Heartbeat STOMP: un newline suelto
		if len(bytes.TrimLeft(data, "\r\n")) == 0 {
			continue
		}

		f, err := frame.NewReader(bytes.NewReader(data)).Read()
		if err != nil || f == nil {
			s.sendError("malformed frame")
			return
		}

		if done := s.dispatch(f); done {
			return
		}
	}
}

// dispatch maneja un frame. Retorna true si la sesión debe terminar.
func (s *session) dispatch(f *frame.Frame) bool {
	switch f.Command {
	case frame.CONNECT, frame.STOMP:
		return s.handleConnect(f)
	case frame.SUBSCRIBE:
		return s.handleSubscribe(f)
	case frame.UNSUBSCRIBE:
		if !s.connected {
			s.sendError("not connected")
			return true
		}
		if id := f.Header.Get(frame.Id); id != "" {
			s.hub.unsubscribe(s, id)
		}
		return false
	case frame.DISCONNECT:
		if receipt := f.Header.Get(frame.Receipt); receipt != "" {
			s.send(frame.New(frame.RECEIPT, frame.ReceiptId, receipt))
		}
		return true
	case frame.SEND:
		// Los clientes sólo consumen; publicar es de los services
		s.sendError("SEND not allowed")
		return true
	default:
		s.sendError("unsupported command " + f.Command)
		return true
	}
}

// handleConnect valida el token del handshake. A diferencia del filtro
// HTTP, acá no hay paso anónimo: sin token válido no hay sesión.
func (s *session) handleConnect(f *frame.Frame) bool {
	if s.connected {
		s.sendError("already connected")
		return true
	}

	// El token se lee y se quita del frame: no tiene que sobrevivir en
	// ninguna estructura que viva más que este handshake.
	raw := f.Header.Get(s.cfg.Header)
	f.Header.Del(s.cfg.Header)
	if raw == "" || !strings.HasPrefix(raw, s.cfg.Prefix) {
		metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
		s.sendError("missing bearer token")
		return true
	}

	claims, err := s.cfg.Verifier.Verify(raw[len(s.cfg.Prefix):])
	if err != nil {
		reason := "invalid"
		if errors.Is(err, envelope.ErrTokenExpired) {
			reason = "expired"
		}
		metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
		logger.L().Warn("ws connect rejected", logger.Component("ws"), logger.Err(err))
		s.sendError("token " + reason)
		return true
	}

	s.principal = auth.NewPrincipal(claims.Subject, claims.Roles)
	s.connected = true
	s.hub.addSession(s)

	logger.L().Info("ws session connected",
		logger.Component("ws"),
		logger.UserEmail(s.principal.Email),
	)

	s.send(frame.New(frame.CONNECTED,
		frame.Version, "1.2",
		frame.HeartBeat, "0,0",
	))
	return false
}

func (s *session) handleSubscribe(f *frame.Frame) bool {
	if !s.connected {
		s.sendError("not connected")
		return true
	}

	// Si el frame trae su propio token, se re-valida acá mismo y se quita
	// del frame: un token vencido corta la sesión aunque el CONNECT original
	// fuera válido. Sin token en el frame vale la identidad del CONNECT,
	// que esta sesión ya autenticó.
	if raw := f.Header.Get(s.cfg.Header); raw != "" {
		f.Header.Del(s.cfg.Header)
		if !strings.HasPrefix(raw, s.cfg.Prefix) {
			s.sendError("malformed bearer token")
			return true
		}
		claims, err := s.cfg.Verifier.Verify(raw[len(s.cfg.Prefix):])
		if err != nil {
			s.sendError("token rejected")
			return true
		}
		s.principal = auth.NewPrincipal(claims.Subject, claims.Roles)
	}

	id := f.Header.Get(frame.Id)
	dest := f.Header.Get(frame.Destination)
	if id == "" || dest == "" {
		s.sendError("subscribe needs id and destination")
		return true
	}
	switch dest {
	case TopicOrders:
		// cualquier sesión autenticada
	case TopicAdminOrders:
		if !s.principal.IsAdmin() {
			s.sendError("destination requires ADMIN")
			return true
		}
	default:
		s.sendError("unknown destination " + dest)
		return true
	}

	s.hub.subscribe(s, id, dest)

	if receipt := f.Header.Get(frame.Receipt); receipt != "" {
		s.send(frame.New(frame.RECEIPT, frame.ReceiptId, receipt))
	}
	return false
}

// sendError manda un frame ERROR. El protocolo exige cerrar después.
func (s *session) sendError(msg string) {
	f := frame.New(frame.ERROR,
		frame.Message, msg,
		frame.ContentType, "text/plain",
	)
	f.Body = []byte(msg)
	s.send(f)
}
