package config

import "time"

// Tempos do fluxo de atendimento. Todos os atrasos passam pelo relógio
// injetado na sessão, então os testes avançam tempo virtual sem esperar.
const (
	// Análise
	AnalysisDuration = 3 * time.Second

	// Chat
	TypingDelay    = 2 * time.Second
	GreetingDelay  = 1 * time.Second
	ConnectDelay   = 3 * time.Second
	QueueWaitLimit = 90 * time.Second

	// Fila simulada
	QueueMaxPosition  = 5
	QueueWaitPerSlot  = 2 * time.Minute // estimativa exibida, derivada da posição
	ResendCodeWindow  = 60 * time.Second
	VerificationTTL   = 10 * time.Minute
	SessionIdleExpiry = 30 * time.Minute
)

// Prefixo e formato do protocolo: DEN-YYYYMMDD-#### (sufixo de 4 dígitos).
const ProtocolPrefix = "DEN"
