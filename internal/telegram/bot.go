package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Run consome atualizações do Telegram e responde comandos da equipe até o
// contexto ser cancelado. Mensagens fora do chat da equipe são ignoradas.
func (a *Alerter) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := a.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if update.Message.Chat.ID != a.chatID {
				continue
			}
			a.handleCommand(update.Message)
		}
	}
}

func (a *Alerter) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "fila":
		a.post(a.queueStatus())
	case "protocolo":
		a.post(a.protocolLookup(strings.TrimSpace(msg.CommandArguments())))
	}
}

func (a *Alerter) queueStatus() string {
	depth, err := a.storage.MediatorQueueDepth()
	if err != nil {
		slog.Warn("falha ao consultar a fila de mediação", "err", err)
		return "Não consegui consultar a fila agora."
	}
	if depth == 0 {
		return "Fila de mediação vazia."
	}
	return fmt.Sprintf("Fila de mediação: %d cidadão(s) aguardando.", depth)
}

func (a *Alerter) protocolLookup(protocol string) string {
	if protocol == "" {
		return "Uso: /protocolo <número>"
	}
	c, err := a.storage.FindComplaintByProtocol(protocol)
	if err != nil {
		return fmt.Sprintf("Protocolo %s não encontrado.", protocol)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Protocolo %s\nCategoria: %s\nArtigo do CDC: %s\nRisco: %s",
		c.ProtocolNumber, c.Category, c.CDCArticle, c.RiskLevel)
	if c.Transcript != "" {
		b.WriteString("\nAtendimento com mediador registrado em transcrição.")
	}
	return b.String()
}
