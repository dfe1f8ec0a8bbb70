// Package report pushes the day's agenda to every authorized chat at a
// configured local hour. Read-only: it never touches conversation
// history or pending navigation state.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/jinbless/moelclaw/internal/logging"
)

// DefaultPollInterval is how often the scheduler checks the clock
const DefaultPollInterval = time.Minute

// Lister produces the formatted today view
type Lister interface {
	TodayListing(ctx context.Context) (string, error)
}

// Recipients yields the chats that should receive the report
type Recipients interface {
	ListAuthorized() ([]int64, error)
}

// Sender delivers the report text
type Sender interface {
	SendText(chatID int64, text string) error
}

// Scheduler fires the daily report once per day at the configured hour
type Scheduler struct {
	lister       Lister
	recipients   Recipients
	sender       Sender
	hour         int
	timezone     *time.Location
	pollInterval time.Duration

	mu       sync.Mutex
	lastSent time.Time

	stopChan chan struct{}
	stopped  bool
}

// Config holds scheduler settings
type Config struct {
	Lister     Lister
	Recipients Recipients
	Sender     Sender
	Hour       int // local hour (0-23) to send at
	Timezone   *time.Location
}

// NewScheduler creates a daily report scheduler
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	return &Scheduler{
		lister:       cfg.Lister,
		recipients:   cfg.Recipients,
		sender:       cfg.Sender,
		hour:         cfg.Hour,
		timezone:     cfg.Timezone,
		pollInterval: DefaultPollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the polling loop
func (s *Scheduler) Start() {
	logging.Info("report", "daily report scheduled for %02d:00 (%s)", s.hour, s.timezone)
	go s.pollLoop()
}

// Stop halts the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopChan)
}

func (s *Scheduler) pollLoop() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.check(time.Now())
		}
	}
}

// check sends the report when the local hour has been reached and
// nothing was sent yet today
func (s *Scheduler) check(now time.Time) {
	local := now.In(s.timezone)
	if local.Hour() < s.hour {
		return
	}

	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.timezone)

	s.mu.Lock()
	alreadySent := !s.lastSent.Before(today)
	s.mu.Unlock()
	if alreadySent {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.send(ctx, now)
}

func (s *Scheduler) send(ctx context.Context, now time.Time) {
	text, err := s.lister.TodayListing(ctx)
	if err != nil {
		logging.Error("report", "today listing: %v", err)
		return
	}

	chats, err := s.recipients.ListAuthorized()
	if err != nil {
		logging.Error("report", "list recipients: %v", err)
		return
	}

	sent := 0
	for _, chatID := range chats {
		if err := s.sender.SendText(chatID, text); err != nil {
			logging.Error("report", "send to chat %d: %v", chatID, err)
			continue
		}
		sent++
	}

	s.mu.Lock()
	s.lastSent = now
	s.mu.Unlock()

	logging.Info("report", "daily report sent to %d/%d chats", sent, len(chats))
}
