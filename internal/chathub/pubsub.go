package chathub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"

	"github.com/redis/go-redis/v9"
)

// ChatMirror abre a assinatura dos canais de chat de todas as sessões.
// storage.Service satisfaz a interface.
type ChatMirror interface {
	SubscribeAllChats() *redis.PubSub
}

// RunMirror escuta o pub/sub do Redis e repassa aos observadores locais as
// mensagens de chat publicadas por qualquer instância. A sessão dona da
// mensagem já recebeu o quadro direto do sink; o espelho existe para o
// acompanhamento da equipe. Bloqueia até o contexto encerrar.
func (h *Hub) RunMirror(ctx context.Context, mirror ChatMirror) {
	pubsub := mirror.SubscribeAllChats()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			var msg models.ChatMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				slog.Warn("mensagem inválida no espelho de chat", "error", err)
				continue
			}
			h.deliverToObservers(msg.SessionID, intake.Outbound{
				Type:    intake.OutMessage,
				Message: &msg,
			})
		}
	}
}
