// Package ws expone los eventos de órdenes en vivo sobre WebSocket,
// hablando STOMP a nivel de frames. El handshake exige el mismo token de
// sesión que la API HTTP, pero acá es obligatorio: un CONNECT sin token
// válido se rechaza en el acto, no hay modo anónimo.
//
// El header de auth se lee y se elimina del frame en el acto. En SUBSCRIBE
// el token es opcional: si viene, se re-valida y reemplaza la identidad de
// la sesión (y un token malo la corta); si no viene, vale la identidad que
// el CONNECT ya dejó autenticada.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/go-stomp/stomp/v3/frame"

	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/metrics"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
)

// Destinations disponibles. El de admin recibe los mismos eventos pero
// sólo acepta suscriptores con rol ADMIN.
const (
	TopicOrders      = "/topic/orders"
	TopicAdminOrders = "/topic/admin/orders"
)

// OrderEvent es el payload JSON que viaja en los frames MESSAGE.
type OrderEvent struct {
	Event string       `json:"event"` // "order_created" | "order_status_changed"
	Order *types.Order `json:"order"`
}

// subscription es una suscripción activa de un cliente a un destination.
type subscription struct {
	id      string
	dest    string
	session *session
}

// Hub mantiene las sesiones activas y reparte los eventos de órdenes.
// Implementa services.OrderNotifier.
type Hub struct {
	mu   sync.RWMutex
	subs map[*session]map[string]*subscription // por sesión, por id de suscripción
}

// NewHub crea un hub vacío.
func NewHub() *Hub {
	return &Hub{subs: make(map[*session]map[string]*subscription)}
}

func (h *Hub) addSession(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[s] = make(map[string]*subscription)
	metrics.WSSessionsActive.Inc()
}

func (h *Hub) removeSession(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		metrics.WSSessionsActive.Dec()
	}
}

func (h *Hub) subscribe(s *session, id, dest string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[s]; ok {
		m[id] = &subscription{id: id, dest: dest, session: s}
	}
}

func (h *Hub) unsubscribe(s *session, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[s]; ok {
		delete(m, id)
	}
}

// OrderCreated publica el alta de una orden a los suscriptores.
func (h *Hub) OrderCreated(o *types.Order) {
	h.publish(OrderEvent{Event: "order_created", Order: o})
}

// OrderStatusChanged publica un cambio de estado.
func (h *Hub) OrderStatusChanged(o *types.Order) {
	h.publish(OrderEvent{Event: "order_status_changed", Order: o})
}

// publish serializa el evento una sola vez y lo manda a cada suscripción
// de TopicOrders. El envío es best-effort: una sesión trabada se saltea.
func (h *Hub) publish(ev OrderEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		logger.L().Error("event marshal failed", logger.Component("ws"), logger.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, m := range h.subs {
		for _, sub := range m {
			if sub.dest != TopicOrders && sub.dest != TopicAdminOrders {
				continue
			}
			f := frame.New(frame.MESSAGE,
				frame.Destination, sub.dest,
				frame.Subscription, sub.id,
				frame.MessageId, sub.id+"-"+ev.Order.ID,
				frame.ContentType, "application/json",
			)
			f.Body = body
			sub.session.send(f)
		}
	}
}
