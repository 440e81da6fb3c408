package chathub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// WebSocketClient implementa Client sobre gorilla/websocket. Cada conexão
// carrega uma sessão de atendimento; derrubar a conexão encerra a sessão.
type WebSocketClient struct {
	session *intake.Session
	conn    *websocket.Conn
	hub     *Hub

	send      chan intake.Outbound
	closeOnce sync.Once
}

// NewWebSocketClient cria o cliente para a conexão dada. O cliente é o Sink
// da sessão; a sessão é amarrada com Bind antes de Run, porque ela própria
// recebe o cliente como sink ao ser aberta.
func NewWebSocketClient(hub *Hub, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		conn: conn,
		hub:  hub,
		send: make(chan intake.Outbound, sendBuffer),
	}
}

// Bind amarra a sessão ao cliente. Deve ser chamado antes de Run.
func (c *WebSocketClient) Bind(session *intake.Session) { c.session = session }

// SessionID identifica a sessão desta conexão.
func (c *WebSocketClient) SessionID() string { return c.session.ID }

// Deliver enfileira o quadro para o writePump. Conexão lenta com o buffer
// cheio perde o quadro; a sessão nunca bloqueia esperando a rede.
func (c *WebSocketClient) Deliver(out intake.Outbound) {
	select {
	case c.send <- out:
	default:
		slog.Warn("quadro descartado para conexão lenta",
			"session", c.session.ID, "type", out.Type)
	}
}

// Run inicia as bombas de leitura e escrita.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close fecha o canal de envio, o que derruba o writePump e a conexão.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump lê os quadros do cidadão e os despacha para a sessão. Sai quando
// a conexão cai, encerrando a sessão junto.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.session.Close()
		c.conn.Close()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("erro de leitura na conexão", "session", c.session.ID, "error", err)
			}
			return
		}

		var in Inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			slog.Warn("quadro inválido do cliente", "session", c.session.ID, "error", err)
			continue
		}

		if err := Dispatch(c.session, in); err != nil {
			// Erros de fluxo voltam para a interface; a conexão segue viva.
			c.Deliver(intake.Outbound{Type: intake.OutError, Error: err.Error()})
		}
	}
}

// writePump escreve os quadros enfileirados na conexão e mantém o ping
// periódico. Quadros acumulados no canal saem no mesmo writer.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case out, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(out)
			if err != nil {
				slog.Warn("falha ao codificar quadro", "session", c.session.ID, "error", err)
				continue
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			n := len(c.send)
			for i := 0; i < n; i++ {
				next, ok := <-c.send
				if !ok {
					break
				}
				extra, _ := json.Marshal(next)
				w.Write([]byte("\n"))
				w.Write(extra)
			}

			if err := w.Close(); err != nil {
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
