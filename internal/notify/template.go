package notify

import (
	"bytes"
	"html/template"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
)

// emailTemplate é o corpo fixo do e-mail de protocolo. Os blocos de
// localização, evidências, transcript e análise só aparecem quando há
// conteúdo; o bloco de próximos passos é sempre o mesmo.
var emailTemplate = template.Must(template.New("protocolo").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #0057B8 0%, #FFD700 100%); color: white; padding: 20px; border-radius: 10px; text-align: center; margin-bottom: 20px;">
    <h1 style="margin: 0; font-size: 24px;">Secretaria do Consumidor GDF</h1>
    <p style="margin: 10px 0 0 0; opacity: 0.9;">Atendimento ao Consumidor</p>
  </div>

  <div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <h2 style="color: #0057B8; margin-top: 0;">Protocolo de Atendimento</h2>
    <div style="background: white; padding: 15px; border-radius: 5px; border-left: 4px solid #0057B8; margin: 10px 0;">
      <strong>Número do Protocolo:</strong> {{.Protocol}}
    </div>
    <div style="background: white; padding: 15px; border-radius: 5px; border-left: 4px solid #0057B8; margin: 10px 0;">
      <strong>Data e Hora:</strong> {{.Date}} às {{.Time}}
    </div>
  </div>

  <div style="background: #e3f2fd; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <h3 style="color: #0057B8; margin-top: 0;">Resumo do Atendimento</h3>
    <p><strong>Descrição do Problema:</strong></p>
    <div style="background: white; padding: 15px; border-radius: 5px; margin: 10px 0; border: 1px solid #ddd;">
      {{.Description}}
    </div>
    {{if .Location}}<p><strong>Localização:</strong> {{.Location}}</p>{{end}}
    {{if .PhotoCount}}<p><strong>Evidências Fotográficas:</strong> {{.PhotoCount}} foto(s) anexada(s)</p>{{end}}
    {{if .VideoCount}}<p><strong>Evidências em Vídeo:</strong> {{.VideoCount}} vídeo(s) anexado(s)</p>{{end}}
    {{if .Transcript}}
    <h4 style="color: #0057B8; margin-top: 20px;">Histórico do Chat:</h4>
    <div style="background: white; padding: 15px; border-radius: 5px; margin: 10px 0; border: 1px solid #ddd; white-space: pre-wrap;">{{.Transcript}}</div>
    {{end}}
  </div>

  {{if .HasAnalysis}}
  <div style="background: #fff3e0; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <h3 style="color: #f57c00; margin-top: 0;">Análise da IA</h3>
    <div style="background: white; padding: 15px; border-radius: 5px; margin: 10px 0; border: 1px solid #ddd;">
      <p><strong>Nível de Risco:</strong> {{.RiskLevel}}</p>
      <p><strong>Resumo Executivo:</strong></p>
      <p>{{.ExecutiveSummary}}</p>
      <p><strong>Artigo do CDC Aplicável:</strong></p>
      <p>{{.CDCArticle}}</p>
      <p><strong>Orientação para Mediação:</strong></p>
      <p>{{.MediationGuidance}}</p>
      <p><strong>Sugestão de Próxima Etapa:</strong></p>
      <p>{{.NextStepSuggestion}}</p>
    </div>
  </div>
  {{end}}

  <div style="background: #f1f8e9; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <h3 style="color: #689f38; margin-top: 0;">Próximos Passos</h3>
    <ul style="margin: 10px 0; padding-left: 20px;">
      <li>Um mediador especializado entrará em contato em até 48 horas</li>
      <li>Mantenha todas as evidências em sua posse</li>
      <li>Responda aos contatos para agilizar o processo</li>
      <li>Em caso de urgência, ligue para (61) 3000-0000</li>
    </ul>
  </div>

  <div style="text-align: center; padding: 20px; color: #666; font-size: 14px; border-top: 1px solid #eee;">
    <p>Este é um e-mail automático. Por favor, não responda a esta mensagem.</p>
    <p>Secretaria do Consumidor do Distrito Federal</p>
    <p>© 2025 Governo do Distrito Federal</p>
  </div>
</div>
`))

// codeTemplate é o corpo do e-mail com o código de verificação do cadastro.
var codeTemplate = template.Must(template.New("verificacao").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #0057B8 0%, #FFD700 100%); color: white; padding: 20px; border-radius: 10px; text-align: center; margin-bottom: 20px;">
    <h1 style="margin: 0; font-size: 24px;">Secretaria do Consumidor GDF</h1>
    <p style="margin: 10px 0 0 0; opacity: 0.9;">Confirmação de Cadastro</p>
  </div>

  <div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <p>Olá, <strong>{{.Nome}}</strong>!</p>
    <p>Use o código abaixo para confirmar seu cadastro no Alô Consumidor:</p>
    <div style="background: white; padding: 20px; border-radius: 5px; border-left: 4px solid #0057B8; margin: 15px 0; text-align: center;">
      <span style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #0057B8;">{{.Codigo}}</span>
    </div>
    <p>O código expira em {{.Validade}} minutos. Se você não iniciou este cadastro, ignore esta mensagem.</p>
  </div>

  <div style="text-align: center; padding: 20px; color: #666; font-size: 14px; border-top: 1px solid #eee;">
    <p>Este é um e-mail automático. Por favor, não responda a esta mensagem.</p>
    <p>Secretaria do Consumidor do Distrito Federal</p>
  </div>
</div>
`))

type codeData struct {
	Nome     string
	Codigo   string
	Validade int
}

// renderCodeBody monta o HTML do e-mail de verificação de cadastro.
func renderCodeBody(p *models.PendingVerification) (string, error) {
	data := codeData{
		Nome:     p.Nome,
		Codigo:   p.VerificationCode,
		Validade: int(p.ExpiresAt.Sub(p.CreatedAt).Minutes()),
	}
	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type templateData struct {
	Protocol    string
	Date        string
	Time        string
	Description string
	Location    string
	PhotoCount  int
	VideoCount  int
	Transcript  string

	HasAnalysis        bool
	RiskLevel          string
	ExecutiveSummary   string
	CDCArticle         string
	MediationGuidance  string
	NextStepSuggestion string
}

// renderBody monta o HTML do e-mail a partir da denúncia finalizada.
func renderBody(c *models.Complaint, now time.Time) (string, error) {
	data := templateData{
		Protocol:    c.ProtocolNumber,
		Date:        now.Format("02/01/2006"),
		Time:        now.Format("15:04:05"),
		Description: c.Description,
		Location:    c.Location,
		PhotoCount:  len(c.Photos),
		VideoCount:  len(c.Videos),
		Transcript:  c.Transcript,

		HasAnalysis:        c.CDCArticle != "",
		RiskLevel:          c.RiskLevel,
		ExecutiveSummary:   c.ExecutiveSummary,
		CDCArticle:         c.CDCArticle,
		MediationGuidance:  c.MediationGuidance,
		NextStepSuggestion: c.NextStepSuggestion,
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
