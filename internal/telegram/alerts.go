// Package telegram avisa a equipe de mediadores por um chat de serviço no
// Telegram. O bot publica a entrada de cidadãos na fila e os protocolos
// emitidos, e responde comandos de consulta da própria equipe.
package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/mediator"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
)

// sender é o recorte do BotAPI usado pelo Alerter, para permitir testes sem
// rede.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Alerter publica avisos no chat da equipe. Os avisos são melhor-esforço:
// falha de entrega vira log, nunca erro para o fluxo de atendimento.
type Alerter struct {
	bot     sender
	api     *tgbotapi.BotAPI
	chatID  int64
	storage storage.Storage
}

// New autentica o bot e prepara o Alerter. Token vazio é erro; quem decide
// se os alertas estão ligados é o chamador, testando a configuração antes.
func New(cfg config.TelegramConfig, s storage.Storage) (*Alerter, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram: token do bot vazio")
	}
	if cfg.StaffChatID == 0 {
		return nil, fmt.Errorf("telegram: chat da equipe não configurado")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: autenticação do bot: %w", err)
	}
	bot.Debug = false
	slog.Info("bot de alertas autenticado", "conta", bot.Self.UserName)

	return &Alerter{bot: bot, api: bot, chatID: cfg.StaffChatID, storage: s}, nil
}

// QueueEntered avisa a equipe que um cidadão entrou na fila de mediação.
func (a *Alerter) QueueEntered(t mediator.Ticket) {
	a.post(fmt.Sprintf("🔔 Cidadão entrou na fila de mediação.\nPosição: %d\nEspera estimada: %s",
		t.Position, t.EstimatedWait))
}

// ProtocolIssued avisa a equipe que uma denúncia foi protocolada.
func (a *Alerter) ProtocolIssued(protocol, category string) {
	a.post(fmt.Sprintf("📋 Protocolo emitido: %s\nCategoria: %s", protocol, category))
}

func (a *Alerter) post(text string) {
	msg := tgbotapi.NewMessage(a.chatID, text)
	if _, err := a.bot.Send(msg); err != nil {
		slog.Warn("falha ao enviar alerta para a equipe", "err", err)
	}
}
