// Package mediator implementa o lado "humano" simulado do atendimento:
// o roteiro de respostas do mediador e a fila de espera que antecede o chat.
package mediator

import (
	"fmt"
	"strings"
)

// Script escolhe a resposta do mediador para cada mensagem do cidadão.
// Mesmo estilo do classificador de denúncias: lista ordenada de palavras-
// chave, primeira correspondência vence, resposta padrão explícita.
type Script struct {
	replies  []scriptReply
	fallback string
}

type scriptReply struct {
	keywords []string
	text     string
}

// NewScript monta o roteiro padrão do portal.
func NewScript() *Script {
	return &Script{
		replies: []scriptReply{
			{
				keywords: []string{"produto", "defeito"},
				text:     "Entendo. Pode me contar mais detalhes sobre o produto e o problema?",
			},
			{
				keywords: []string{"loja", "atendimento"},
				text:     "Já tentou resolver diretamente com o estabelecimento?",
			},
		},
		fallback: "Vamos verificar as opções de solução para o seu caso. Posso te ajudar com isso.",
	}
}

// Greeting é a primeira fala do mediador ao conectar.
func (s *Script) Greeting() string {
	return "Olá! Sou seu mediador. Como posso ajudar você hoje?"
}

// Reply devolve a resposta roteirizada para a mensagem do cidadão.
// Uma mensagem, uma resposta; a escolha é determinística.
func (s *Script) Reply(userText string) string {
	lower := strings.ToLower(userText)
	for _, r := range s.replies {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.text
			}
		}
	}
	return s.fallback
}

// Farewell encerra o chat entregando o protocolo ao cidadão.
func (s *Script) Farewell(protocol string) string {
	return fmt.Sprintf("Obrigado pelo seu contato! Seu protocolo é: %s. "+
		"Você receberá um e-mail com o resumo deste atendimento em breve.", protocol)
}
