package reminder

import (
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
)

// Source supplies the collection to check.
type Source interface {
	Snapshot() []model.Technology
}

// NotificationsMsg is a tea.Msg carrying reminders that have not been shown
// yet today.
type NotificationsMsg struct {
	Notifications []model.Notification
}

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 5 * time.Minute

// Poller periodically checks deadlines and reports each technology at most
// once per day and urgency.
type Poller struct {
	source   Source
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	resultCh  chan NotificationsMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu       sync.Mutex
	// notified maps technology/urgency/day keys to their day. Earlier days
	// are dropped on each check.
	notified map[string]civil.Date
	running  bool
	enabled  bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// New creates an enabled Poller.
func New(src Source, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		source:    src,
		interval:  interval,
		now:       time.Now,
		logger:    zap.NewNop(),
		resultCh:  make(chan NotificationsMsg, 16),
		triggerCh: make(chan struct{}, 1),
		notified:  make(map[string]civil.Date),
		enabled:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetEnabled turns reminders on or off. A disabled poller keeps ticking but
// reports nothing.
func (p *Poller) SetEnabled(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = on
}

// Start launches the polling goroutine and returns a tea.Cmd that delivers
// the first NotificationsMsg.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	stop := make(chan struct{})
	p.stopCh = stop
	p.mu.Unlock()

	go p.loop(stop)
	return p.WaitForNext()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Refresh requests an immediate check.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.send(p.Check())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.send(p.Check())
		case <-p.triggerCh:
			p.send(p.Check())
		}
	}
}

// Check returns reminders not reported before for the same technology,
// urgency and day.
func (p *Poller) Check() []model.Notification {
	p.mu.Lock()
	enabled := p.enabled
	p.mu.Unlock()
	if !enabled {
		return nil
	}

	now := p.now()
	due := Due(p.source.Snapshot(), now)
	day := deadline.Today(now)

	p.mu.Lock()
	defer p.mu.Unlock()

	for key, d := range p.notified {
		if d.Before(day) {
			delete(p.notified, key)
		}
	}

	var fresh []model.Notification
	for _, n := range due {
		key := fmt.Sprintf("%d/%s/%s", n.TechnologyID, n.Urgency, day)
		if _, seen := p.notified[key]; seen {
			continue
		}
		p.notified[key] = day
		fresh = append(fresh, n)
	}
	if len(fresh) > 0 {
		p.logger.Info("deadline reminders", zap.Int("count", len(fresh)))
	}
	return fresh
}

func (p *Poller) send(ns []model.Notification) {
	if len(ns) == 0 {
		return
	}
	select {
	case p.resultCh <- NotificationsMsg{Notifications: ns}:
	default:
		p.logger.Warn("dropping reminders, receiver is behind", zap.Int("count", len(ns)))
	}
}

// WaitForNext returns a tea.Cmd that blocks until the next batch of
// reminders. Call it again after handling each NotificationsMsg. The cmd
// returns nil once the poller is stopped, and WaitForNext itself returns nil
// when the poller is not running.
func (p *Poller) WaitForNext() tea.Cmd {
	p.mu.Lock()
	stop, running := p.stopCh, p.running
	p.mu.Unlock()
	if !running {
		return nil
	}

	return func() tea.Msg {
		select {
		case msg := <-p.resultCh:
			return msg
		case <-stop:
			return nil
		}
	}
}

func (p *Poller) trackedKeys() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.notified)
}
