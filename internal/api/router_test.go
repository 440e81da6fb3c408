package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/api/handler"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/auth"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/chathub"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/clock"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/complaint"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/mediator"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/notify"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage/storagetest"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cpfValido = "11144477735"

type testServer struct {
	router *gin.Engine
	fake   *storagetest.Fake
	clk    *clock.Fake
	auth   *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := storagetest.New()
	clk := clock.NewFake(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	classifier := analysis.NewKeywordClassifier()
	complaints := complaint.NewServiceWith(fake, clk.Now, rand.New(rand.NewSource(7)))
	authSvc := auth.NewService(fake, nil, "segredo-de-teste")

	deps := intake.Deps{
		Classifier: classifier,
		Script:     mediator.NewScript(),
		Complaints: complaints,
		Notifier:   notify.NewService(config.SMTPConfig{}, fake),
		Storage:    fake,
		Clock:      clk,
	}
	hub := chathub.NewHub(intake.NewManagerWithSeed(deps, 1))

	h := handler.NewHandler(authSvc, complaints, classifier, hub, fake)
	return &testServer{
		router: NewRouter(h, authSvc),
		fake:   fake,
		clk:    clk,
		auth:   authSvc,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCadastroVerificacaoELogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"nome":                "Maria da Silva",
		"cpf":                 "111.444.777-35",
		"email":               "maria@example.com",
		"verification_method": "email",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), ts.fake.Pendings[cpfValido].VerificationCode,
		"o código nunca vaza na resposta")

	code := ts.fake.Pendings[cpfValido].VerificationCode
	w = ts.do(t, http.MethodPost, "/api/auth/verify", gin.H{
		"cpf":              cpfValido,
		"code":             code,
		"password":         "senha-forte",
		"confirm_password": "senha-forte",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"cpf":      cpfValido,
		"password": "senha-forte",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.NotEmpty(t, resp["token"])
}

func TestCadastroComCPFInvalido(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"nome":  "Maria",
		"cpf":   "12345678900",
		"email": "maria@example.com",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyComSenhasDiferentes(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/auth/verify", gin.H{
		"cpf":              cpfValido,
		"code":             "123456",
		"password":         "senha-forte",
		"confirm_password": "outra-senha",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "senhas não conferem")
}

func TestLoginComCredenciaisErradas(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"cpf":      cpfValido,
		"password": "qualquer",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDenunciaDiretaPelaAPI(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/complaints", gin.H{
		"description": "propaganda enganosa no anúncio da TV",
		"photos":      []string{"anuncio.jpg"},
		"location":    "Taguatinga Norte",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	protocol, _ := resp["protocol_number"].(string)
	assert.Regexp(t, `^DEN-\d{8}-\d{4}$`, protocol)

	// A análise vai embutida no registro.
	require.Len(t, ts.fake.Complaints, 1)
	assert.Contains(t, ts.fake.Complaints[0].CDCArticle, "Art. 37")

	w = ts.do(t, http.MethodGet, "/api/complaints/"+protocol, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/complaints/DEN-19990101-0000", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListagemExigeToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/complaints", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	user := &models.User{ID: "user-1", Nome: "Maria", CPF: cpfValido, Email: "maria@example.com", IsActive: true}
	require.NoError(t, ts.fake.CreateUser(user))
	token, err := ts.auth.GenerateToken(user)
	require.NoError(t, err)

	headers := map[string]string{"Authorization": "Bearer " + token}
	w = ts.do(t, http.MethodPost, "/api/complaints", gin.H{
		"description": "cobrança indevida na mensalidade",
	}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/api/complaints", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.NotNil(t, list[0].UserID)
	assert.Equal(t, "user-1", *list[0].UserID)
}

func TestAnaliseAvulsa(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/ai/analyze-complaint", gin.H{
		"description": "Produto com defeito no liquidificador",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result analysis.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Contains(t, result.CDCArticle, "Art. 18")

	w = ts.do(t, http.MethodPost, "/api/ai/analyze-complaint", gin.H{"description": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPesquisaDeSatisfacao(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/surveys", gin.H{
		"protocol_number": "DEN-20260315-0001",
		"rating":          10,
		"comment":         "resolvido rápido",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, ts.fake.Surveys, 1)

	w = ts.do(t, http.MethodPost, "/api/surveys", gin.H{
		"protocol_number": "DEN-20260315-0001",
		"rating":          11,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestAtendimentoViaWebSocket percorre o fluxo satisfeito inteiro por uma
// conexão WebSocket real, avançando o relógio fake entre os quadros.
func TestAtendimentoViaWebSocket(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	send := func(v any) {
		require.NoError(t, conn.WriteJSON(v))
	}
	// readFrame lê o próximo quadro; o writePump pode agrupar vários quadros
	// separados por quebra de linha na mesma mensagem.
	frames := make([]intake.Outbound, 0)
	readFrame := func() intake.Outbound {
		for len(frames) == 0 {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, raw, err := conn.ReadMessage()
			require.NoError(t, err)
			for _, part := range bytes.Split(raw, []byte("\n")) {
				if len(bytes.TrimSpace(part)) == 0 {
					continue
				}
				var out intake.Outbound
				require.NoError(t, json.Unmarshal(part, &out))
				frames = append(frames, out)
			}
		}
		out := frames[0]
		frames = frames[1:]
		return out
	}
	waitState := func(want intake.State) {
		for {
			out := readFrame()
			if out.Type == intake.OutState && out.State == want {
				return
			}
		}
	}

	send(gin.H{"type": "complaint", "description": "cobrança indevida no cartão"})
	waitState(intake.StateAnalyzing)

	ts.clk.Advance(config.AnalysisDuration)
	waitState(intake.StateAnalysisResults)

	send(gin.H{"type": "satisfied"})
	var protocol string
	for {
		out := readFrame()
		if out.Type == intake.OutProtocol {
			protocol = out.Protocol
			break
		}
	}
	assert.Regexp(t, `^DEN-\d{8}-\d{4}$`, protocol)
	require.Len(t, ts.fake.Complaints, 1)
	assert.Equal(t, protocol, ts.fake.Complaints[0].ProtocolNumber)
	require.Len(t, ts.fake.Outbox, 1)

	send(gin.H{"type": "survey", "rating": 9, "comment": "excelente"})
	waitState(intake.StateClosed)
	require.Len(t, ts.fake.Surveys, 1)
}
