// Package analysis classifica denúncias de consumo contra o CDC.
// O motor atual é determinístico: uma lista ordenada de regras por palavra-
// chave, primeira correspondência vence, com regra padrão explícita. A
// interface Classifier permite trocar o motor por um modelo real sem tocar
// na máquina de estados do atendimento.
package analysis

import "strings"

// Níveis de risco atribuídos pelas regras.
const (
	RiskLow    = "baixo"
	RiskMedium = "médio"
	RiskHigh   = "alto"
)

// Result é o parecer produzido para uma denúncia. Não é persistido à parte:
// vive embutido na Complaint e no e-mail de protocolo.
type Result struct {
	Category           string `json:"category"`
	CDCArticle         string `json:"cdc_article"`
	MediationGuidance  string `json:"mediation_guidance"`
	ExecutiveSummary   string `json:"executive_summary"`
	NextStepSuggestion string `json:"next_step_suggestion"`
	RiskLevel          string `json:"risk_level"`
}

// Classifier transforma a descrição de um problema em um parecer.
type Classifier interface {
	Classify(description string) Result
}

// rule associa uma palavra-chave (busca por substring, caixa baixa) a um
// parecer fixo.
type rule struct {
	keyword string
	result  Result
}

// KeywordClassifier implementa Classifier sobre a lista ordenada de regras.
type KeywordClassifier struct {
	rules    []rule
	fallback Result
}

// NewKeywordClassifier monta o classificador com as regras do portal.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []rule{
			{
				keyword: "produto com defeito",
				result: Result{
					Category:   "vício do produto",
					CDCArticle: "Art. 18 - Vício do Produto ou Serviço",
					MediationGuidance: "O fornecedor tem 30 dias para sanar o vício. " +
						"Caso contrário, o consumidor pode exigir a substituição do produto, " +
						"a restituição imediata da quantia paga ou o abatimento proporcional do preço.",
					ExecutiveSummary: "Relato de produto adquirido com vício de qualidade " +
						"que o torna impróprio ou inadequado ao consumo.",
					NextStepSuggestion: "Notificar o fornecedor formalmente e aguardar o " +
						"prazo legal de 30 dias antes de exigir as alternativas do Art. 18.",
					RiskLevel: RiskMedium,
				},
			},
			{
				keyword: "atendimento ruim",
				result: Result{
					Category:   "falha de atendimento",
					CDCArticle: "Art. 6º, III e IV - Direitos Básicos do Consumidor",
					MediationGuidance: "O consumidor tem direito à informação clara e adequada " +
						"e à proteção contra práticas abusivas. Recomenda-se registrar a " +
						"ocorrência e buscar a mediação para uma solução amigável.",
					ExecutiveSummary: "Relato de tratamento inadequado ou falta de informação " +
						"no atendimento prestado pelo fornecedor.",
					NextStepSuggestion: "Registrar a ocorrência com data, local e nomes dos " +
						"atendentes envolvidos e encaminhar para mediação.",
					RiskLevel: RiskLow,
				},
			},
			{
				keyword: "propaganda enganosa",
				result: Result{
					Category:   "publicidade enganosa",
					CDCArticle: "Art. 37 - Publicidade Enganosa ou Abusiva",
					MediationGuidance: "A publicidade enganosa é proibida. O consumidor pode " +
						"exigir o cumprimento da oferta, a rescisão do contrato com restituição " +
						"ou o abatimento proporcional do preço.",
					ExecutiveSummary: "Relato de oferta ou publicidade capaz de induzir o " +
						"consumidor a erro sobre características ou preço do produto.",
					NextStepSuggestion: "Preservar a peça publicitária (print, encarte, áudio) " +
						"como evidência e exigir o cumprimento da oferta anunciada.",
					RiskLevel: RiskHigh,
				},
			},
			{
				keyword: "cobrança indevida",
				result: Result{
					Category:   "cobrança indevida",
					CDCArticle: "Art. 42 - Cobrança de Dívidas",
					MediationGuidance: "O consumidor cobrado em quantia indevida tem direito à " +
						"repetição do indébito, por valor igual ao dobro do que pagou em excesso, " +
						"acrescido de correção monetária e juros legais.",
					ExecutiveSummary: "Relato de cobrança de valor indevido ou não contratado, " +
						"com possível direito à devolução em dobro.",
					NextStepSuggestion: "Reunir faturas e comprovantes de pagamento e contestar " +
						"a cobrança formalmente junto ao fornecedor.",
					RiskLevel: RiskHigh,
				},
			},
		},
		fallback: Result{
			Category:   "geral",
			CDCArticle: "Art. 6º - Direitos Básicos do Consumidor",
			MediationGuidance: "Sua denúncia será analisada por um mediador. Mantenha todas " +
				"as evidências e aguarde o contato para os próximos passos.",
			ExecutiveSummary: "Relato de possível violação aos direitos do consumidor que " +
				"requer avaliação individual por um mediador.",
			NextStepSuggestion: "Aguardar o contato do mediador mantendo todas as evidências " +
				"organizadas e acessíveis.",
			RiskLevel: RiskLow,
		},
	}
}

// Classify devolve o parecer da primeira regra cuja palavra-chave aparece na
// descrição. Descrições sem correspondência recebem o parecer padrão.
// A mesma entrada produz sempre a mesma saída.
func (c *KeywordClassifier) Classify(description string) Result {
	lower := strings.ToLower(description)
	for _, r := range c.rules {
		if strings.Contains(lower, r.keyword) {
			return r.result
		}
	}
	return c.fallback
}
