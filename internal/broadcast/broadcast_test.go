package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"commentpulse/internal/domain"
)

type recordingStore struct {
	mu     sync.Mutex
	events []domain.LogEvent
	err    error
}

func (r *recordingStore) Append(_ context.Context, event *domain.LogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *recordingStore) appended() []domain.LogEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LogEvent(nil), r.events...)
}

type recordingForwarder struct {
	mu     sync.Mutex
	events []domain.LogEvent
	err    error
}

func (r *recordingForwarder) Forward(_ context.Context, event *domain.LogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *event)
	return nil
}

type BroadcasterTestSuite struct {
	suite.Suite

	store       *recordingStore
	forwarder   *recordingForwarder
	broadcaster *Broadcaster
}

func (s *BroadcasterTestSuite) SetupTest() {
	s.store = &recordingStore{}
	s.forwarder = &recordingForwarder{}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.broadcaster = New(s.store, s.forwarder, 4, logger)
}

func TestBroadcasterTestSuite(t *testing.T) {
	suite.Run(t, new(BroadcasterTestSuite))
}

func (s *BroadcasterTestSuite) publish(channelID, message string) {
	err := s.broadcaster.Publish(context.Background(), &domain.LogEvent{
		ChannelID: channelID,
		UserID:    "u1",
		Message:   message,
		Level:     domain.LevelInfo,
	})
	s.Require().NoError(err)
}

func (s *BroadcasterTestSuite) TestPublish_DeliversToSubscriber() {
	sub := s.broadcaster.Subscribe("ch1")
	defer s.broadcaster.Unsubscribe(sub)

	s.publish("ch1", "sync started")

	select {
	case got := <-sub.C:
		s.Equal("sync started", got.Message)
		s.NotEmpty(got.ID)
		s.False(got.CreatedAt.IsZero())
	case <-time.After(time.Second):
		s.Fail("no event delivered")
	}
}

func (s *BroadcasterTestSuite) TestPublish_AppendsBeforeFanOut() {
	s.publish("ch1", "one")
	s.publish("ch1", "two")

	appended := s.store.appended()
	s.Require().Len(appended, 2)
	s.Equal("one", appended[0].Message)
	s.Equal("two", appended[1].Message)
}

func (s *BroadcasterTestSuite) TestPublish_AppendFailureDeliversNothing() {
	s.store.err = errors.New("insert failed")

	sub := s.broadcaster.Subscribe("ch1")
	defer s.broadcaster.Unsubscribe(sub)

	err := s.broadcaster.Publish(context.Background(), &domain.LogEvent{
		ChannelID: "ch1",
		Message:   "doomed",
	})

	s.Error(err)
	s.Empty(s.forwarder.events)
	select {
	case <-sub.C:
		s.Fail("event must not reach subscribers when the append fails")
	default:
	}
}

func (s *BroadcasterTestSuite) TestPublish_ZeroSubscribers() {
	s.publish("ch1", "nobody listening")

	s.Len(s.store.appended(), 1)
}

func (s *BroadcasterTestSuite) TestPublish_ChannelIsolation() {
	sub1 := s.broadcaster.Subscribe("ch1")
	sub2 := s.broadcaster.Subscribe("ch2")
	defer s.broadcaster.Unsubscribe(sub1)
	defer s.broadcaster.Unsubscribe(sub2)

	s.publish("ch1", "for ch1 only")

	select {
	case got := <-sub1.C:
		s.Equal("for ch1 only", got.Message)
	case <-time.After(time.Second):
		s.Fail("subscriber on ch1 got nothing")
	}

	select {
	case <-sub2.C:
		s.Fail("subscriber on ch2 must not see ch1 events")
	default:
	}
}

func (s *BroadcasterTestSuite) TestSubscribe_NoReplay() {
	s.publish("ch1", "before subscribe")

	sub := s.broadcaster.Subscribe("ch1")
	defer s.broadcaster.Unsubscribe(sub)

	select {
	case <-sub.C:
		s.Fail("late subscribers get no replay")
	default:
	}
}

func (s *BroadcasterTestSuite) TestUnsubscribe_ClosesChannel() {
	sub := s.broadcaster.Subscribe("ch1")
	s.broadcaster.Unsubscribe(sub)

	_, open := <-sub.C
	s.False(open)

	// publishing after the last unsubscribe still works
	s.publish("ch1", "still fine")
}

func (s *BroadcasterTestSuite) TestPublish_SlowSubscriberLosesOnlyItsOwnEvents() {
	slow := s.broadcaster.Subscribe("ch1")
	fast := s.broadcaster.Subscribe("ch1")
	defer s.broadcaster.Unsubscribe(slow)
	defer s.broadcaster.Unsubscribe(fast)

	// buffer depth is 4; the sixth event overflows the undrained slow
	// subscriber while fast drains as it goes
	for i := 0; i < 6; i++ {
		s.publish("ch1", "event")
		select {
		case <-fast.C:
		case <-time.After(time.Second):
			s.Fail("fast subscriber starved")
		}
	}

	s.Len(slow.C, 4)
	s.Len(s.store.appended(), 6)
}

func (s *BroadcasterTestSuite) TestPublish_ForwarderFailureIsBestEffort() {
	s.forwarder.err = errors.New("broker down")

	sub := s.broadcaster.Subscribe("ch1")
	defer s.broadcaster.Unsubscribe(sub)

	s.publish("ch1", "delivered anyway")

	select {
	case got := <-sub.C:
		s.Equal("delivered anyway", got.Message)
	case <-time.After(time.Second):
		s.Fail("no event delivered")
	}
}

func (s *BroadcasterTestSuite) TestPublish_NilForwarder() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	b := New(s.store, nil, 4, logger)

	err := b.Publish(context.Background(), &domain.LogEvent{ChannelID: "ch1", Message: "ok"})
	s.NoError(err)
}

func (s *BroadcasterTestSuite) TestPublish_ConcurrentWithSubscriptionChurn() {
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				sub := s.broadcaster.Subscribe("ch1")
				s.broadcaster.Unsubscribe(sub)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		s.publish("ch1", "churn")
	}
	close(done)
	wg.Wait()

	s.Len(s.store.appended(), 200)
}
