// Package clock abstrai timers para que o fluxo de atendimento possa ser
// testado com tempo virtual. A sessão agenda todos os seus atrasos por aqui
// e cancela o conjunto inteiro ao encerrar.
package clock

import "time"

// Timer é um agendamento cancelável.
type Timer interface {
	// Stop cancela o disparo. Retorna false se o callback já executou
	// ou já foi cancelado.
	Stop() bool
}

// Clock cria timers e informa o instante atual.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// New retorna o relógio de produção, apoiado em time.AfterFunc.
func New() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }
