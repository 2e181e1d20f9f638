package realtime

import (
	"context"
	"encoding/json"
	"time"

	"remold-service/internal/database"
	"remold-service/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Canal Redis para fan-out de eventos entre instancias
	canalEventos = "remold:eventos"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second

	// Buffer de envío por cliente; los clientes que no drenan se desconectan
	sendBufferSize = 32
)

// Cliente una conexión WebSocket suscrita al hub
type Cliente struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub distribuye eventos de stock y producción a los clientes WebSocket.
// Los eventos se publican en Redis para que todas las instancias los
// entreguen a sus clientes locales; si Redis falla, el evento se entrega
// solo localmente.
type Hub struct {
	clientes   map[*Cliente]bool
	registrar  chan *Cliente
	baja       chan *Cliente
	difundir   chan []byte
	redis      *database.RedisDB
	logger     *zap.Logger
}

// NewHub crea el hub; llamar Run en una goroutine propia
func NewHub(redis *database.RedisDB, logger *zap.Logger) *Hub {
	return &Hub{
		clientes:  make(map[*Cliente]bool),
		registrar: make(chan *Cliente),
		baja:      make(chan *Cliente),
		difundir:  make(chan []byte, 64),
		redis:     redis,
		logger:    logger,
	}
}

// Run atiende altas, bajas y entrega de eventos. Bloquea hasta que el
// contexto se cancele.
func (h *Hub) Run(ctx context.Context) {
	if h.redis != nil {
		go h.escucharRedis(ctx)
	}

	for {
		select {
		case cliente := <-h.registrar:
			h.clientes[cliente] = true
			h.logger.Info("Cliente WebSocket conectado",
				zap.Int("clientes", len(h.clientes)))

		case cliente := <-h.baja:
			if _, ok := h.clientes[cliente]; ok {
				delete(h.clientes, cliente)
				close(cliente.send)
				h.logger.Info("Cliente WebSocket desconectado",
					zap.Int("clientes", len(h.clientes)))
			}

		case mensaje := <-h.difundir:
			for cliente := range h.clientes {
				select {
				case cliente.send <- mensaje:
				default:
					// Cliente lento: cerrar en vez de bloquear al hub
					delete(h.clientes, cliente)
					close(cliente.send)
				}
			}

		case <-ctx.Done():
			for cliente := range h.clientes {
				close(cliente.send)
				cliente.conn.Close()
			}
			return
		}
	}
}

// Broadcast publica un evento a todos los clientes. Con Redis disponible
// el evento viaja por pub/sub y lo entrega el suscriptor de cada
// instancia; sin Redis se entrega directo a los clientes locales.
func (h *Hub) Broadcast(evento models.Evento) {
	data, err := json.Marshal(evento)
	if err != nil {
		h.logger.Error("Error serializando evento", zap.Error(err))
		return
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := h.redis.Publish(ctx, canalEventos, data); err == nil {
			return
		} else {
			h.logger.Warn("Redis publish falló, entregando solo localmente",
				zap.Error(err))
		}
	}

	h.entregarLocal(data)
}

func (h *Hub) entregarLocal(data []byte) {
	select {
	case h.difundir <- data:
	default:
		h.logger.Warn("Buffer de difusión lleno, evento descartado")
	}
}

// escucharRedis entrega a los clientes locales los eventos publicados
// por cualquier instancia
func (h *Hub) escucharRedis(ctx context.Context) {
	sub := h.redis.Subscribe(ctx, canalEventos)
	defer sub.Close()

	canal := sub.Channel()
	for {
		select {
		case msg, ok := <-canal:
			if !ok {
				h.logger.Warn("Suscripción Redis cerrada")
				return
			}
			h.entregarLocal([]byte(msg.Payload))

		case <-ctx.Done():
			return
		}
	}
}

// Registrar incorpora una conexión ya actualizada a WebSocket y arranca
// sus bombas de lectura y escritura
func (h *Hub) Registrar(conn *websocket.Conn) {
	cliente := &Cliente{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.registrar <- cliente

	go cliente.escribir()
	go cliente.leer()
}

// Clientes cantidad de clientes conectados a esta instancia
func (h *Hub) Clientes() int {
	// Solo informativo; el hub serializa las mutaciones en Run
	return len(h.clientes)
}

// leer descarta mensajes entrantes y detecta la desconexión
func (c *Cliente) leer() {
	defer func() {
		c.hub.baja <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Cierre inesperado de WebSocket", zap.Error(err))
			}
			return
		}
	}
}

// escribir bombea eventos y pings hacia el cliente
func (c *Cliente) escribir() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case mensaje, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, mensaje); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
