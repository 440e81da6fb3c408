// Package intake implementa a máquina de estados do atendimento de denúncia:
// formulário → análise → resultado → {fila → chat | satisfeito} →
// finalização → protocolo → pesquisa → encerrado. Todos os atrasos passam
// por clock.Clock e toda aleatoriedade por um *rand.Rand injetado, então o
// fluxo inteiro roda determinístico nos testes.
package intake

import (
	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/mediator"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
)

// State é o estado corrente de uma sessão de atendimento.
// Tipo próprio em vez de string livre: transições só existem entre os
// valores abaixo.
type State string

const (
	StateForm            State = "form"
	StateAnalyzing       State = "analyzing"
	StateAnalysisResults State = "analysis_results"
	StateQueue           State = "queue"
	StateChat            State = "chat"
	StateContactFallback State = "contact_fallback"
	StateFinalizing      State = "finalizing"
	StateFinalizeFailed  State = "finalize_failed"
	StateFinalized       State = "finalized"
	StateSurvey          State = "survey"
	StateClosed          State = "closed"
)

// Terminal informa se a sessão não aceita mais eventos de fluxo.
func (s State) Terminal() bool { return s == StateClosed }

// Tipos dos quadros enviados à interface do cidadão.
const (
	OutState    = "state"
	OutProgress = "progress"
	OutAnalysis = "analysis"
	OutQueue    = "queue"
	OutMessage  = "message"
	OutProtocol = "protocol"
	OutError    = "error"
)

// Outbound é um quadro empurrado da sessão para a interface (via WebSocket
// em produção). Os campos opcionais dependem do tipo.
type Outbound struct {
	Type        string              `json:"type"`
	State       State               `json:"state,omitempty"`
	Progress    int                 `json:"progress,omitempty"`
	Analysis    *analysis.Result    `json:"analysis,omitempty"`
	Position    int                 `json:"position,omitempty"`
	WaitSeconds int                 `json:"wait_seconds,omitempty"`
	Message     *models.ChatMessage `json:"message,omitempty"`
	Protocol    string              `json:"protocol,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Sink recebe os quadros produzidos pela sessão.
type Sink interface {
	Deliver(Outbound)
}

// SinkFunc adapta uma função a Sink.
type SinkFunc func(Outbound)

// Deliver implementa Sink.
func (f SinkFunc) Deliver(out Outbound) { f(out) }

// StaffAlerter avisa a equipe de mediação sobre eventos relevantes.
// A implementação de produção usa o bot de Telegram; nil desliga os avisos.
type StaffAlerter interface {
	QueueEntered(ticket mediator.Ticket)
	ProtocolIssued(protocol, category string)
}
