package report

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLister struct {
	text  string
	err   error
	calls int
}

func (f *fakeLister) TodayListing(_ context.Context) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeRecipients struct{ chats []int64 }

func (f *fakeRecipients) ListAuthorized() ([]int64, error) { return f.chats, nil }

type fakeSender struct {
	sent    map[int64]string
	failFor int64
}

func (f *fakeSender) SendText(chatID int64, text string) error {
	if chatID == f.failFor {
		return errors.New("delivery failed")
	}
	if f.sent == nil {
		f.sent = make(map[int64]string)
	}
	f.sent[chatID] = text
	return nil
}

func newTestScheduler(lister *fakeLister, sender *fakeSender, chats []int64) *Scheduler {
	return NewScheduler(Config{
		Lister:     lister,
		Recipients: &fakeRecipients{chats: chats},
		Sender:     sender,
		Hour:       8,
		Timezone:   time.UTC,
	})
}

func TestCheckBeforeHour(t *testing.T) {
	lister := &fakeLister{text: "오늘의 일정"}
	sender := &fakeSender{}
	s := newTestScheduler(lister, sender, []int64{1})

	s.check(time.Date(2024, 6, 10, 7, 59, 0, 0, time.UTC))

	if lister.calls != 0 || len(sender.sent) != 0 {
		t.Error("nothing should be sent before the configured hour")
	}
}

func TestCheckSendsOncePerDay(t *testing.T) {
	lister := &fakeLister{text: "오늘의 일정"}
	sender := &fakeSender{}
	s := newTestScheduler(lister, sender, []int64{1, 2})

	at := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	s.check(at)

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(sender.sent))
	}
	if sender.sent[1] != "오늘의 일정" {
		t.Errorf("text = %q", sender.sent[1])
	}

	// Later the same day: no resend
	s.check(at.Add(3 * time.Hour))
	if lister.calls != 1 {
		t.Errorf("report must not repeat within a day, listed %d times", lister.calls)
	}

	// Next day at the hour: sends again
	s.check(at.AddDate(0, 0, 1))
	if lister.calls != 2 {
		t.Errorf("expected a fresh report the next day, listed %d times", lister.calls)
	}
}

func TestCheckDeliveryFailureDoesNotBlockOthers(t *testing.T) {
	lister := &fakeLister{text: "오늘의 일정"}
	sender := &fakeSender{failFor: 1}
	s := newTestScheduler(lister, sender, []int64{1, 2, 3})

	s.check(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))

	if len(sender.sent) != 2 {
		t.Errorf("expected the other chats delivered, got %v", sender.sent)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := newTestScheduler(&fakeLister{}, &fakeSender{}, nil)
	s.Start()
	s.Stop()
	s.Stop() // must not panic
}
