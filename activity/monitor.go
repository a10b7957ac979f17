package activity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-session-guard/session"
)

// Signal identifies one kind of user-interaction event.
type Signal string

const (
	SignalPointerDown Signal = "pointerdown"
	SignalKeyDown     Signal = "keydown"
	SignalScroll      Signal = "scroll"
	SignalTouchStart  Signal = "touchstart"
)

// Signals returns the fixed set of interaction kinds the monitor listens for.
func Signals() []Signal {
	return []Signal{SignalPointerDown, SignalKeyDown, SignalScroll, SignalTouchStart}
}

// Source delivers user-interaction signals. It is the stand-in for whatever
// surface the host application observes (input events, request activity).
type Source interface {
	// Subscribe registers a listener for the given signal kinds. The returned
	// cancel function detaches it; calling cancel more than once is a no-op.
	Subscribe(kinds []Signal, fn func(Signal)) (cancel func())
}

// Warning announces that the session will time out soon unless an
// interaction resets the clock. It never logs anyone out by itself.
type Warning struct {
	Message   string
	Remaining time.Duration
}

const warningMessage = "Your session will expire in 5 minutes due to inactivity. Click anywhere to extend."

// Monitor bridges interaction signals to the session store and enforces the
// two timeout policies: the one-shot pre-expiry warning and the periodic
// pull-based inactivity check.
type Monitor struct {
	store         *session.Store
	source        Source
	log           zerolog.Logger
	warnFunc      func(Warning)
	timeoutFunc   func()
	checkInterval time.Duration
	warnAfter     time.Duration
	warnWindow    time.Duration

	lock         sync.Mutex
	running      bool
	cancelSource func()
	warnTimer    *time.Timer
	stop         chan struct{}
}

// MonitorOption defines a function type to modify the Monitor instance.
type MonitorOption func(*Monitor)

// WithWarningFunc sets the callback invoked when the pre-expiry warning
// fires.
func WithWarningFunc(fn func(Warning)) MonitorOption {
	return func(m *Monitor) {
		m.warnFunc = fn
	}
}

// WithTimeoutFunc sets the callback invoked after an inactivity timeout has
// reset the session. Callers use it to redirect to the sign-in entry point.
func WithTimeoutFunc(fn func()) MonitorOption {
	return func(m *Monitor) {
		m.timeoutFunc = fn
	}
}

// WithCheckInterval overrides the periodic timeout-check interval.
func WithCheckInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.checkInterval = d
	}
}

// WithWarningSchedule overrides when the warning fires (after `warnAfter` of
// silence) and the remaining window it reports.
func WithWarningSchedule(warnAfter, warnWindow time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.warnAfter = warnAfter
		m.warnWindow = warnWindow
	}
}

// WithMonitorLogger sets the monitor's logger.
func WithMonitorLogger(log zerolog.Logger) MonitorOption {
	return func(m *Monitor) {
		m.log = log
	}
}

// NewMonitor initializes a Monitor with required dependencies.
func NewMonitor(store *session.Store, source Source, options ...MonitorOption) (*Monitor, error) {
	if store == nil {
		return nil, errors.New("[NewMonitor] session store is required")
	}
	if source == nil {
		return nil, errors.New("[NewMonitor] signal source is required")
	}

	monitor := &Monitor{
		store:         store,
		source:        source,
		log:           zerolog.Nop(),
		checkInterval: session.CheckInterval,
		warnAfter:     session.InactivityLimit - session.WarningBefore,
		warnWindow:    session.WarningBefore,
	}

	for _, opt := range options {
		opt(monitor)
	}
	return monitor, nil
}

// Start registers the interaction listeners, arms the warning timer, and
// launches the periodic timeout check. Calling Start on a running monitor is
// a no-op.
func (m *Monitor) Start() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.cancelSource = m.source.Subscribe(Signals(), m.onSignal)
	m.warnTimer = time.AfterFunc(m.warnAfter, m.fireWarning)
	go m.checkLoop(m.stop)
	m.log.Debug().Msg("activity monitoring started")
}

// Stop releases every listener and timer. A signal arriving after Stop has
// begun is not observed.
func (m *Monitor) Stop() {
	m.lock.Lock()
	if !m.running {
		m.lock.Unlock()
		return
	}
	m.running = false
	cancelSource := m.cancelSource
	m.cancelSource = nil
	m.warnTimer.Stop()
	m.warnTimer = nil
	close(m.stop)
	m.lock.Unlock()

	cancelSource()
	m.log.Debug().Msg("activity monitoring stopped")
}

// onSignal records activity and re-arms the warning timer. The running check
// and the timer reset share the monitor lock with Stop, so a signal racing a
// teardown is dropped rather than observed.
func (m *Monitor) onSignal(sig Signal) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.running {
		return
	}
	m.store.RecordActivity()
	m.warnTimer.Reset(m.warnAfter)
}

func (m *Monitor) fireWarning() {
	m.lock.Lock()
	if !m.running {
		m.lock.Unlock()
		return
	}
	warnFunc := m.warnFunc
	window := m.warnWindow
	m.lock.Unlock()

	m.log.Debug().Dur("remaining", window).Msg("session warning")
	if warnFunc != nil {
		warnFunc(Warning{Message: warningMessage, Remaining: window})
	}
}

func (m *Monitor) checkLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !m.store.IsAuthenticated() {
				continue
			}
			if m.store.CheckTimeout(context.Background()) {
				m.log.Info().Msg("session timed out from inactivity")
				m.onTimeout()
			}
		}
	}
}

func (m *Monitor) onTimeout() {
	m.lock.Lock()
	timeoutFunc := m.timeoutFunc
	running := m.running
	m.lock.Unlock()

	if running && timeoutFunc != nil {
		timeoutFunc()
	}
}
