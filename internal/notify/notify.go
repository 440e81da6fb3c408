// Package notify envia o e-mail de protocolo ao cidadão. Toda notificação é
// registrada na caixa de saída persistida antes de qualquer tentativa de
// entrega; a entrega SMTP real só acontece quando o servidor está
// configurado. Quem chama deve tratar o envio como falível.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"

	"gopkg.in/gomail.v2"
)

// Sender é o contrato que o fluxo de atendimento usa para notificar.
type Sender interface {
	Send(ctx context.Context, to string, complaint *models.Complaint) error
}

// Service implementa Sender com caixa de saída + SMTP opcional.
type Service struct {
	cfg     config.SMTPConfig
	storage storage.Storage
	now     func() time.Time
}

// NewService cria o notificador. O relógio é injetável para os testes.
func NewService(cfg config.SMTPConfig, s storage.Storage) *Service {
	return &Service{cfg: cfg, storage: s, now: time.Now}
}

// Send renderiza o e-mail de protocolo, grava na caixa de saída e tenta a
// entrega. Falha em qualquer etapa retorna erro para que o finalize possa
// oferecer nova tentativa sem perder o protocolo já gerado.
func (n *Service) Send(ctx context.Context, to string, complaint *models.Complaint) error {
	if to == "" {
		to = "usuario@teste.com"
	}

	body, err := renderBody(complaint, n.now())
	if err != nil {
		return fmt.Errorf("renderizar e-mail: %w", err)
	}
	subject := "Protocolo de Atendimento - " + complaint.ProtocolNumber

	outbox := &models.SentEmail{
		To:             to,
		Subject:        subject,
		Body:           body,
		ComplaintID:    complaint.ID,
		ProtocolNumber: complaint.ProtocolNumber,
		SentAt:         n.now(),
	}
	if err := n.storage.SaveSentEmail(outbox); err != nil {
		return fmt.Errorf("gravar caixa de saída: %w", err)
	}

	if n.cfg.Host == "" || n.cfg.From == "" {
		// Sem SMTP configurado o registro na caixa de saída é a entrega.
		slog.Info("notificação registrada (SMTP desabilitado)",
			"to", to, "protocol", complaint.ProtocolNumber)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar e-mail: %w", err)
	}

	slog.Info("notificação de protocolo enviada",
		"to", to, "protocol", complaint.ProtocolNumber)
	return nil
}

// SendCode entrega o código de verificação do cadastro. Segue o mesmo
// caminho do e-mail de protocolo: caixa de saída sempre, SMTP quando
// configurado. O código nunca aparece em log.
func (n *Service) SendCode(pending *models.PendingVerification) error {
	subject := "Código de Verificação - Alô Consumidor"
	body, err := renderCodeBody(pending)
	if err != nil {
		return fmt.Errorf("renderizar e-mail de verificação: %w", err)
	}

	outbox := &models.SentEmail{
		To:      pending.Email,
		Subject: subject,
		Body:    body,
		SentAt:  n.now(),
	}
	if err := n.storage.SaveSentEmail(outbox); err != nil {
		return fmt.Errorf("gravar caixa de saída: %w", err)
	}

	if n.cfg.Host == "" || n.cfg.From == "" {
		slog.Info("código de verificação registrado (SMTP desabilitado)",
			"to", pending.Email)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", pending.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar e-mail de verificação: %w", err)
	}
	return nil
}
