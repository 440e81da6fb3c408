package storage

import (
	"encoding/json"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	mediatorQueueKey = "mediator_queue"
	resendKeyPrefix  = "resend:"
	chatChannelPref  = "chat:"
)

// EnterMediatorQueue coloca a sessão no fim da fila de mediação e retorna a
// posição real (1-based). A posição exibida ao cidadão é limitada pela
// simulação, mas a fila em si é compartilhada entre instâncias.
func (s *Service) EnterMediatorQueue(sessionID string) (int64, error) {
	if err := s.Redis.RPush(s.Ctx, mediatorQueueKey, sessionID).Err(); err != nil {
		return 0, err
	}
	return s.Redis.LLen(s.Ctx, mediatorQueueKey).Result()
}

// LeaveMediatorQueue remove a sessão da fila (conexão, timeout ou desistência).
func (s *Service) LeaveMediatorQueue(sessionID string) error {
	return s.Redis.LRem(s.Ctx, mediatorQueueKey, 0, sessionID).Err()
}

func (s *Service) MediatorQueueDepth() (int64, error) {
	return s.Redis.LLen(s.Ctx, mediatorQueueKey).Result()
}

// AllowResend aplica o controle de frequência do reenvio de código:
// uma tentativa por CPF dentro da janela.
func (s *Service) AllowResend(cpf string, window time.Duration) (bool, error) {
	return s.Redis.SetNX(s.Ctx, resendKeyPrefix+cpf, "1", window).Result()
}

// PublishChatMessage espelha a mensagem no canal da sessão para que outras
// instâncias (e observadores administrativos) acompanhem o atendimento.
func (s *Service) PublishChatMessage(sessionID string, msg models.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, chatChannelPref+sessionID, payload).Err()
}

// SubscribeChat abre a assinatura do canal de chat de uma sessão.
func (s *Service) SubscribeChat(sessionID string) *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, chatChannelPref+sessionID)
}

// SubscribeAllChats abre a assinatura por padrão de todos os canais de chat.
// Usada pelo hub para espelhar atendimentos de outras instâncias.
func (s *Service) SubscribeAllChats() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, chatChannelPref+"*")
}
