// Package metrics expõe os contadores Prometheus do portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions conta atendimentos abertos neste instante.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aloconsumidor_active_sessions",
		Help: "Atendimentos de denúncia abertos no momento.",
	})

	// AnalysesRun conta análises de denúncia concluídas, por categoria.
	AnalysesRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aloconsumidor_analyses_total",
		Help: "Análises de denúncia concluídas.",
	}, []string{"category"})

	// ComplaintsRegistered conta denúncias persistidas com protocolo.
	ComplaintsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aloconsumidor_complaints_total",
		Help: "Denúncias registradas com número de protocolo.",
	})

	// Notifications conta envios de e-mail de protocolo, por resultado.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aloconsumidor_notifications_total",
		Help: "Notificações de protocolo enviadas, por resultado.",
	}, []string{"result"})

	// QueueOutcomes conta desfechos da fila de mediação (connected/timeout).
	QueueOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aloconsumidor_queue_outcomes_total",
		Help: "Desfechos da espera na fila de mediação.",
	}, []string{"outcome"})

	// SurveyResponses conta pesquisas de satisfação respondidas.
	SurveyResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aloconsumidor_surveys_total",
		Help: "Pesquisas de satisfação respondidas.",
	})
)
