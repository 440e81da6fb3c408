// Package chathub liga as sessões de atendimento às conexões dos cidadãos.
// O hub registra um cliente por sessão, espelha via Redis as mensagens de
// atendimentos de outras instâncias e traduz os quadros recebidos em eventos
// da máquina de estados.
package chathub

import "github.com/AgilizeTecnologia/alo-consumidor/internal/intake"

// Client é qualquer conexão capaz de receber os quadros de uma sessão de
// atendimento. A implementação WebSocket é a de produção; os testes usam um
// cliente em memória.
type Client interface {
	// SessionID identifica a sessão de atendimento desta conexão.
	SessionID() string

	// Deliver entrega um quadro ao cidadão. Nunca deve bloquear: quem não
	// consegue absorver o quadro o descarta.
	Deliver(intake.Outbound)

	// Run inicia as bombas de leitura e escrita da conexão.
	Run()

	// Close encerra a conexão e libera os recursos associados.
	Close()
}
