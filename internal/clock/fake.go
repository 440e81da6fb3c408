package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake é um relógio determinístico para testes: timers só disparam quando o
// teste chama Advance, sempre na ordem dos seus prazos.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	nextID int
}

// NewFake cria um relógio fake iniciado no instante dado.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := &fakeTimer{
		clock:    f,
		id:       f.nextID,
		deadline: f.now.Add(d),
		fn:       fn,
	}
	f.timers = append(f.timers, t)
	return t
}

// Advance move o relógio até o instante alvo disparando os timers um a um,
// em ordem de prazo, com o relógio posicionado no prazo de cada um. Timers
// agendados pelos próprios callbacks disparam ainda no mesmo Advance quando
// o prazo deles cabe na janela. Os callbacks rodam fora do lock.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		next := f.popDue(target)
		if next == nil {
			break
		}
		f.now = next.deadline
		f.mu.Unlock()
		next.fn()
		f.mu.Lock()
	}

	f.now = target
	f.mu.Unlock()
}

// popDue remove e devolve o timer pendente de prazo mais cedo dentro da
// janela, ou nil quando não há mais nenhum. Chamado com o lock em poder.
func (f *Fake) popDue(target time.Time) *fakeTimer {
	sort.Slice(f.timers, func(i, j int) bool {
		if f.timers[i].deadline.Equal(f.timers[j].deadline) {
			return f.timers[i].id < f.timers[j].id
		}
		return f.timers[i].deadline.Before(f.timers[j].deadline)
	})
	for i, t := range f.timers {
		if t.stopped {
			continue
		}
		if t.deadline.After(target) {
			return nil
		}
		f.timers = append(f.timers[:i:i], f.timers[i+1:]...)
		return t
	}
	return nil
}

// Pending devolve quantos timers ainda aguardam disparo.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock    *Fake
	id       int
	deadline time.Time
	fn       func()
	stopped  bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}
