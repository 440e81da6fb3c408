package handler

import (
	"net/http"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/chathub"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restringir origem quando o domínio do portal estiver fechado.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket abre a conexão do atendimento. Token é opcional: sem ele o
// atendimento é anônimo; com ele a denúncia sai amarrada ao cidadão. O token
// pode vir no header Authorization ou no parâmetro ?token= (navegadores não
// mandam headers no handshake de WebSocket).
func (h *Handler) ServeWebSocket(c *gin.Context) {
	var user *models.User
	if token := bearerOrQueryToken(c); token != "" {
		claims, err := h.Auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido ou expirado"})
			return
		}
		u, err := h.Storage.GetUserByID(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido ou expirado"})
			return
		}
		user = u
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade já escreveu a resposta de erro.
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn)
	session := h.Hub.Sessions.Open(user, client)
	client.Bind(session)

	h.Hub.Register(client)
	client.Run()
}

func bearerOrQueryToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return c.Query("token")
}
