package chathub

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/clock"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/complaint"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/mediator"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/notify"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage/storagetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient é um Client em memória para os testes do hub.
type fakeClient struct {
	id      string
	frames  chan intake.Outbound
	closed  chan struct{}
	running bool
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{id: id, frames: make(chan intake.Outbound, 16), closed: make(chan struct{})}
}

func (f *fakeClient) SessionID() string { return f.id }
func (f *fakeClient) Deliver(out intake.Outbound) {
	select {
	case f.frames <- out:
	default:
	}
}
func (f *fakeClient) Run() { f.running = true }
func (f *fakeClient) Close() {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
}

func testManager(t *testing.T) (*intake.Manager, *clock.Fake) {
	t.Helper()
	fake := storagetest.New()
	clk := clock.NewFake(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	deps := intake.Deps{
		Classifier: analysis.NewKeywordClassifier(),
		Script:     mediator.NewScript(),
		Complaints: complaint.NewServiceWith(fake, clk.Now, rand.New(rand.NewSource(7))),
		Notifier:   notify.NewService(config.SMTPConfig{}, fake),
		Storage:    fake,
		Clock:      clk,
	}
	return intake.NewManagerWithSeed(deps, 1), clk
}

func TestHubRegistraUmaConexaoPorSessao(t *testing.T) {
	mgr, _ := testManager(t)
	hub := NewHub(mgr)

	a := newFakeClient("sess-1")
	b := newFakeClient("sess-1")

	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 1, hub.Len())

	// A conexão anterior da mesma sessão é derrubada.
	select {
	case <-a.closed:
	default:
		t.Fatal("conexão antiga deveria ter sido fechada")
	}

	got, ok := hub.Client("sess-1")
	require.True(t, ok)
	assert.Same(t, b, got.(*fakeClient))

	// Unregister de uma conexão substituída não remove a corrente.
	hub.Unregister(a)
	assert.Equal(t, 1, hub.Len())
	hub.Unregister(b)
	assert.Equal(t, 0, hub.Len())
}

func TestHubShutdownDerrubaConexoesESessoes(t *testing.T) {
	mgr, _ := testManager(t)
	hub := NewHub(mgr)

	sess := mgr.Open(nil, nil)
	c := newFakeClient(sess.ID)
	hub.Register(c)

	hub.Shutdown()
	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, 0, mgr.Len())
	assert.Equal(t, intake.StateClosed, sess.State())
	select {
	case <-c.closed:
	default:
		t.Fatal("Shutdown deveria fechar os clientes")
	}
}

func TestDispatchTraduzQuadrosEmEventos(t *testing.T) {
	mgr, clk := testManager(t)
	sess := mgr.Open(nil, nil)

	require.NoError(t, Dispatch(sess, Inbound{Type: EvComplaint, Description: "cobrança indevida no cartão"}))
	assert.Equal(t, intake.StateAnalyzing, sess.State())
	clk.Advance(config.AnalysisDuration)

	require.NoError(t, Dispatch(sess, Inbound{Type: EvDetails}))
	require.NoError(t, Dispatch(sess, Inbound{Type: EvSatisfied}))
	assert.Equal(t, intake.StateFinalized, sess.State())

	require.NoError(t, Dispatch(sess, Inbound{Type: EvSurvey, Rating: 8, Comment: "ok"}))
	assert.Equal(t, intake.StateClosed, sess.State())
}

func TestDispatchErroVoltaParaQuemChamou(t *testing.T) {
	mgr, _ := testManager(t)
	sess := mgr.Open(nil, nil)

	assert.ErrorIs(t, Dispatch(sess, Inbound{Type: EvMessage, Text: "oi"}), intake.ErrTransicaoInvalida)
	assert.Error(t, Dispatch(sess, Inbound{Type: "manobra-desconhecida"}))

	require.NoError(t, Dispatch(sess, Inbound{Type: EvClose}))
	assert.Equal(t, intake.StateClosed, sess.State())
}

func TestMirrorEntregaMensagensAosObservadores(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := storage.NewService(nil, rdb)

	mgr, _ := testManager(t)
	hub := NewHub(mgr)

	watcher := newFakeClient("observer")
	hub.Observe("sess-42", watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.RunMirror(ctx, svc)

	// Dá tempo para a assinatura do padrão chegar ao Redis.
	time.Sleep(50 * time.Millisecond)

	msg := models.ChatMessage{
		ID:        1,
		SessionID: "sess-42",
		Sender:    models.SenderMediator,
		Text:      "Olá, sou o mediador",
		Timestamp: time.Now(),
	}
	require.NoError(t, svc.PublishChatMessage("sess-42", msg))

	select {
	case frame := <-watcher.frames:
		assert.Equal(t, intake.OutMessage, frame.Type)
		require.NotNil(t, frame.Message)
		assert.Equal(t, "Olá, sou o mediador", frame.Message.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("observador não recebeu a mensagem espelhada")
	}
}
