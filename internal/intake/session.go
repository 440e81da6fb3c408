package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/clock"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/complaint"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/mediator"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/metrics"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/notify"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
)

// Erros de fluxo devolvidos pelos eventos da sessão.
var (
	ErrSessaoEncerrada        = errors.New("atendimento encerrado")
	ErrTransicaoInvalida      = errors.New("ação não disponível neste momento")
	ErrMensagemVazia          = errors.New("escreva uma mensagem antes de enviar")
	ErrContatoInvalido        = errors.New("informe um e-mail ou telefone para contato")
	ErrNotaInvalida           = errors.New("a nota da pesquisa vai de 0 a 10")
	ErrFinalizacaoEmAndamento = errors.New("a finalização já está em andamento")
)

// Métodos de contato aceitos no ramo de fallback da fila.
const (
	ContactByEmail = "email"
	ContactByPhone = "phone"
)

// Options controla o comportamento da fila simulada.
type Options struct {
	// QueueEnabled liga a espera em fila antes do chat. Desligada, a
	// escolha do mediador conecta direto após o atraso de conexão.
	QueueEnabled bool
	// ConnectProbability é a chance de a espera terminar em conexão.
	ConnectProbability float64
}

// Deps são os colaboradores de uma sessão de atendimento.
type Deps struct {
	Classifier analysis.Classifier
	Script     *mediator.Script
	Complaints *complaint.Service
	Notifier   notify.Sender
	Storage    storage.Storage
	Alerts     StaffAlerter // opcional
	Clock      clock.Clock
	Options    Options
}

// Session é um atendimento de denúncia em andamento. Todos os eventos são
// serializados pelo mutex; callbacks de timer atrasados conferem o contador
// de geração e viram no-ops quando a sessão mudou de fase ou encerrou.
//
// O Sink é chamado com o mutex da sessão em poder: implementações devem
// apenas enfileirar o quadro, nunca chamar de volta a sessão.
type Session struct {
	ID string

	mu     sync.Mutex
	state  State
	gen    uint64
	timers []clock.Timer

	idleTimer clock.Timer

	deps Deps
	rng  *rand.Rand
	sink Sink
	user *models.User

	input       complaint.CreateInput
	result      analysis.Result
	progress    int
	detailsOpen bool

	ticket     mediator.Ticket
	queue      *mediator.Queue
	transcript []models.ChatMessage
	nextMsgID  int

	protocol       string
	savedComplaint *models.Complaint
	finalizeBusy   bool

	// onClose é chamado uma única vez quando a sessão encerra.
	onClose func(id string)
}

// NewSession cria a sessão no estado de formulário. user nil indica
// atendimento anônimo; sink nil descarta os quadros.
func NewSession(id string, user *models.User, sink Sink, deps Deps, rng *rand.Rand) *Session {
	s := &Session{
		ID:    id,
		state: StateForm,
		deps:  deps,
		rng:   rng,
		sink:  sink,
		user:  user,
	}
	s.queue = mediator.NewQueue(deps.Storage, rng)
	return s
}

// SubmitComplaint recebe o formulário e dispara a análise simulada.
// Descrição vazia é erro de validação e a sessão permanece no formulário.
func (s *Session) SubmitComplaint(description string, photos, videos []string, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateForm); err != nil {
		return err
	}
	if strings.TrimSpace(description) == "" {
		return complaint.ErrRelatoVazio
	}

	s.input = complaint.CreateInput{
		Description: strings.TrimSpace(description),
		Photos:      photos,
		Videos:      videos,
		Location:    strings.TrimSpace(location),
	}
	s.setState(StateAnalyzing)
	s.progress = 0
	s.touch()

	// A barra de progresso avança em saltos aleatórios e fecha em 100
	// junto com o resultado.
	step := config.AnalysisDuration / 4
	for i := 1; i <= 3; i++ {
		s.schedule(time.Duration(i)*step, func() {
			s.progress = min(95, s.progress+20+s.rng.Intn(15))
			s.push(Outbound{Type: OutProgress, Progress: s.progress})
		})
	}
	s.schedule(config.AnalysisDuration, s.finishAnalysis)
	return nil
}

// finishAnalysis roda no timer da análise, com o mutex em poder.
func (s *Session) finishAnalysis() {
	s.result = s.deps.Classifier.Classify(s.input.Description)
	s.progress = 100
	metrics.AnalysesRun.WithLabelValues(s.result.Category).Inc()
	s.push(Outbound{Type: OutProgress, Progress: 100})
	s.setState(StateAnalysisResults)
	s.push(Outbound{Type: OutAnalysis, Analysis: &s.result})
	slog.Info("análise concluída",
		"session", s.ID, "category", s.result.Category, "risk", s.result.RiskLevel)
}

// ToggleDetails abre ou fecha o painel de detalhes do parecer. Não transiciona.
func (s *Session) ToggleDetails() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateAnalysisResults); err != nil {
		return false, err
	}
	s.detailsOpen = !s.detailsOpen
	return s.detailsOpen, nil
}

// ChooseSatisfied encerra o atendimento sem mediação: o parecer bastou.
func (s *Session) ChooseSatisfied() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateAnalysisResults); err != nil {
		return err
	}
	s.touch()
	return s.finalize()
}

// ChooseMediator leva o cidadão à fila de mediação (ou direto à conexão,
// quando a fila está desligada). O desfecho da espera é sorteado na entrada:
// conexão após o atraso curto ou estouro do tempo de espera.
func (s *Session) ChooseMediator() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateAnalysisResults); err != nil {
		return err
	}
	s.touch()

	if !s.deps.Options.QueueEnabled {
		s.setState(StateQueue)
		s.schedule(config.ConnectDelay, s.connectMediator)
		return nil
	}

	ticket, err := s.queue.Enter(s.ID)
	if err != nil {
		return fmt.Errorf("entrar na fila de mediação: %w", err)
	}
	s.ticket = ticket
	s.setState(StateQueue)
	s.push(Outbound{
		Type:        OutQueue,
		Position:    ticket.Position,
		WaitSeconds: int(ticket.EstimatedWait.Seconds()),
	})
	if s.deps.Alerts != nil {
		s.deps.Alerts.QueueEntered(ticket)
	}

	if s.queue.DrawConnect(s.deps.Options.ConnectProbability) {
		s.schedule(config.ConnectDelay, s.connectMediator)
	} else {
		s.schedule(config.QueueWaitLimit, s.queueTimeout)
	}
	return nil
}

// connectMediator roda no timer de conexão, com o mutex em poder.
func (s *Session) connectMediator() {
	if s.deps.Options.QueueEnabled {
		s.queue.Leave(s.ID)
	}
	metrics.QueueOutcomes.WithLabelValues("connected").Inc()
	s.setState(StateChat)
	s.schedule(config.GreetingDelay, func() {
		s.appendMessage(models.SenderMediator, s.deps.Script.Greeting())
	})
}

// queueTimeout roda quando a espera estoura, com o mutex em poder.
func (s *Session) queueTimeout() {
	s.queue.Leave(s.ID)
	metrics.QueueOutcomes.WithLabelValues("timeout").Inc()
	slog.Info("fila de mediação estourou o tempo de espera", "session", s.ID)
	s.setState(StateContactFallback)
}

// SendMessage acrescenta a mensagem do cidadão ao chat e agenda exatamente
// uma resposta roteirizada do mediador após o atraso de digitação.
func (s *Session) SendMessage(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateChat); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrMensagemVazia
	}
	s.touch()

	s.appendMessage(models.SenderUser, strings.TrimSpace(text))
	reply := s.deps.Script.Reply(text)
	s.schedule(config.TypingDelay, func() {
		s.appendMessage(models.SenderMediator, reply)
	})
	return nil
}

// EndChat despede o mediador com o protocolo e finaliza com o transcript.
// Respostas de digitação ainda pendentes são descartadas.
func (s *Session) EndChat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateChat); err != nil {
		return err
	}
	s.touch()
	s.invalidateTimers()

	if s.protocol == "" {
		s.protocol = s.deps.Complaints.NewProtocol()
	}
	s.appendMessage(models.SenderMediator, s.deps.Script.Farewell(s.protocol))
	return s.finalize()
}

// SubmitContactPreference registra o canal de contato escolhido após o
// estouro da fila e finaliza pelo ramo de fallback.
func (s *Session) SubmitContactPreference(method, contact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateContactFallback); err != nil {
		return err
	}
	if (method != ContactByEmail && method != ContactByPhone) || strings.TrimSpace(contact) == "" {
		return ErrContatoInvalido
	}
	s.touch()

	s.appendMessage(models.SenderSystem, fmt.Sprintf(
		"Não foi possível conectar a um mediador. O cidadão optou por contato via %s: %s.",
		method, strings.TrimSpace(contact)))
	return s.finalize()
}

// RetryFinalize tenta de novo uma finalização que falhou. O protocolo já
// emitido é mantido; a denúncia não é gravada em duplicidade.
func (s *Session) RetryFinalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateFinalizeFailed); err != nil {
		return err
	}
	s.touch()
	return s.finalize()
}

// finalize emite o protocolo (uma única vez), persiste a denúncia e envia a
// notificação. Falha em qualquer etapa leva a finalize_failed com nova
// tentativa disponível; o fluxo nunca avança silenciosamente nem troca o
// protocolo. Chamado com o mutex em poder; solta o mutex durante o I/O.
func (s *Session) finalize() error {
	if s.finalizeBusy {
		return ErrFinalizacaoEmAndamento
	}
	s.finalizeBusy = true
	s.invalidateTimers()

	if s.protocol == "" {
		s.protocol = s.deps.Complaints.NewProtocol()
	}
	s.setState(StateFinalizing)

	in := s.input
	in.Protocol = s.protocol
	in.Transcript = flattenTranscript(s.transcript)
	if s.user != nil {
		in.UserID = s.user.ID
	}
	email := ""
	if s.user != nil {
		email = s.user.Email
	}
	saved := s.savedComplaint
	result := s.result

	s.mu.Unlock()
	saved, err := s.runFinalize(saved, in, result, email)
	s.mu.Lock()

	s.finalizeBusy = false
	if saved != nil {
		s.savedComplaint = saved
	}
	if s.state == StateClosed {
		// Encerrada durante o I/O: os efeitos já aplicados permanecem,
		// mas não há mais estado a atualizar.
		return err
	}
	if err != nil {
		s.setState(StateFinalizeFailed)
		s.push(Outbound{Type: OutError, Error: "não foi possível registrar o protocolo, tente novamente"})
		slog.Error("finalização falhou", "session", s.ID, "protocol", s.protocol, "error", err)
		return fmt.Errorf("finalizar atendimento: %w", err)
	}

	s.setState(StateFinalized)
	s.push(Outbound{Type: OutProtocol, Protocol: s.protocol})
	if s.deps.Alerts != nil {
		s.deps.Alerts.ProtocolIssued(s.protocol, s.result.Category)
	}
	slog.Info("protocolo emitido", "session", s.ID, "protocol", s.protocol)
	return nil
}

// runFinalize faz o I/O da finalização fora do mutex. A gravação da denúncia
// é pulada quando uma tentativa anterior já a persistiu.
func (s *Session) runFinalize(saved *models.Complaint, in complaint.CreateInput, result analysis.Result, email string) (*models.Complaint, error) {
	if saved == nil {
		c, err := s.deps.Complaints.Register(in, result)
		if err != nil {
			return nil, err
		}
		saved = c
		metrics.ComplaintsRegistered.Inc()
	}
	if err := s.deps.Notifier.Send(context.Background(), email, saved); err != nil {
		metrics.Notifications.WithLabelValues("error").Inc()
		return saved, err
	}
	metrics.Notifications.WithLabelValues("ok").Inc()
	return saved, nil
}

// OpenSurvey abre a pesquisa de satisfação depois do protocolo.
func (s *Session) OpenSurvey() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateFinalized); err != nil {
		return err
	}
	s.touch()
	s.setState(StateSurvey)
	return nil
}

// SubmitSurvey registra a pesquisa de satisfação e encerra a sessão.
// A gravação é melhor-esforço: falha é registrada em log e nunca bloqueia
// o encerramento nem a entrega do protocolo, já feita.
func (s *Session) SubmitSurvey(rating int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateFinalized, StateSurvey); err != nil {
		return err
	}
	if rating < 0 || rating > 10 {
		return ErrNotaInvalida
	}

	survey := &models.SurveyResponse{
		ProtocolNumber: s.protocol,
		Rating:         rating,
		Comment:        strings.TrimSpace(comment),
	}
	if err := s.deps.Storage.SaveSurveyResponse(survey); err != nil {
		slog.Warn("falha ao gravar pesquisa de satisfação",
			"session", s.ID, "protocol", s.protocol, "error", err)
	} else {
		metrics.SurveyResponses.Inc()
	}
	s.close()
	return nil
}

// Close encerra a sessão em qualquer estado: cancela todos os timers, sai da
// fila se estiver nela e descarta o transcript vivo. Encerrar antes da
// finalização não deixa denúncia nem notificação para trás.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if s.state == StateQueue && s.deps.Options.QueueEnabled {
		s.queue.Leave(s.ID)
	}
	s.close()
}

// close faz o encerramento com o mutex em poder.
func (s *Session) close() {
	s.invalidateTimers()
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	s.transcript = nil
	s.setState(StateClosed)
	if s.onClose != nil {
		s.onClose(s.ID)
		s.onClose = nil
	}
}

// require confere se a sessão está em um dos estados dados.
func (s *Session) require(states ...State) error {
	if s.state == StateClosed {
		return ErrSessaoEncerrada
	}
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}
	return fmt.Errorf("%w (estado atual: %s)", ErrTransicaoInvalida, s.state)
}

// setState troca o estado e avisa a interface.
func (s *Session) setState(next State) {
	s.state = next
	s.push(Outbound{Type: OutState, State: next})
}

// schedule agenda um callback que só roda se a sessão continuar na mesma
// geração: timers atrasados de uma fase já abandonada viram no-ops.
// fn roda com o mutex em poder.
func (s *Session) schedule(d time.Duration, fn func()) {
	gen := s.gen
	t := s.deps.Clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.state == StateClosed {
			return
		}
		fn()
	})
	s.timers = append(s.timers, t)
}

// invalidateTimers cancela todos os timers pendentes e invalida os que já
// dispararam mas ainda não rodaram.
func (s *Session) invalidateTimers() {
	s.gen++
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

// touch empurra a expiração por inatividade para frente.
func (s *Session) touch() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = s.deps.Clock.AfterFunc(config.SessionIdleExpiry, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateClosed {
			return
		}
		slog.Info("sessão encerrada por inatividade", "session", s.ID)
		if s.state == StateQueue && s.deps.Options.QueueEnabled {
			s.queue.Leave(s.ID)
		}
		s.close()
	})
}

// appendMessage acrescenta uma mensagem ao transcript, publica no canal da
// sessão e empurra para a interface. Chamado com o mutex em poder.
func (s *Session) appendMessage(sender models.Sender, text string) {
	s.nextMsgID++
	msg := models.ChatMessage{
		ID:        s.nextMsgID,
		SessionID: s.ID,
		Sender:    sender,
		Text:      text,
		Timestamp: s.deps.Clock.Now(),
	}
	s.transcript = append(s.transcript, msg)
	if err := s.deps.Storage.PublishChatMessage(s.ID, msg); err != nil {
		slog.Warn("falha ao publicar mensagem de chat", "session", s.ID, "error", err)
	}
	s.push(Outbound{Type: OutMessage, Message: &msg})
}

func (s *Session) push(out Outbound) {
	if s.sink != nil {
		s.sink.Deliver(out)
	}
}

// flattenTranscript achata a conversa no formato embutido na denúncia e no
// e-mail de protocolo.
func flattenTranscript(msgs []models.ChatMessage) string {
	if len(msgs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s: %s", m.Timestamp.Format("15:04"), senderLabel(m.Sender), m.Text)
	}
	return b.String()
}

func senderLabel(s models.Sender) string {
	switch s {
	case models.SenderUser:
		return "Cidadão"
	case models.SenderMediator:
		return "Mediador"
	case models.SenderBot:
		return "Assistente"
	default:
		return "Sistema"
	}
}

// Acessores para a camada HTTP e os testes.

// State devolve o estado corrente.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Protocol devolve o protocolo emitido, vazio antes da finalização.
func (s *Session) Protocol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocol
}

// Analysis devolve o parecer da análise.
func (s *Session) Analysis() analysis.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Progress devolve o avanço da análise (0–100).
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Ticket devolve a entrada na fila de mediação.
func (s *Session) Ticket() mediator.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket
}

// Transcript devolve uma cópia das mensagens trocadas até aqui.
func (s *Session) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}
