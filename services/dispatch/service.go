package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"watchdeck/models"
)

// Notifier delivers a due reminder. Implementations decide the channel; the
// default just logs.
type Notifier interface {
	Notify(userID string, reminder models.Reminder, release models.Release) error
}

// LogNotifier writes due reminders to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(userID string, reminder models.Reminder, release models.Release) error {
	log.Printf("[dispatch] reminder due for user %s: show %d (%s) airs %s", userID, reminder.ShowID, reminder.Scope, release.AirDate.Format(time.RFC3339))
	return nil
}

// ReminderSource lists a user's active reminders.
type ReminderSource interface {
	List(userID string) ([]models.Reminder, error)
}

// UserSource enumerates profiles to dispatch for.
type UserSource interface {
	List() []models.User
}

// ReleaseSource provides the month's releases to match reminders against.
type ReleaseSource interface {
	FetchReleasesForMonth(ctx context.Context, year int, month time.Month) ([]models.Release, error)
}

// Service is the background loop that matches upcoming releases against
// stored reminders and fires each match once. Dispatch state is in-memory;
// after a restart an already-sent reminder whose window is still open fires
// again, which beats silently dropping it.
type Service struct {
	users     UserSource
	reminders ReminderSource
	catalog   ReleaseSource
	notifier  Notifier
	interval  time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	dispatched map[string]bool
}

func NewService(users UserSource, reminders ReminderSource, catalog ReleaseSource, notifier Notifier, interval time.Duration) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		users:      users,
		reminders:  reminders,
		catalog:    catalog,
		notifier:   notifier,
		interval:   interval,
		dispatched: make(map[string]bool),
	}
}

// Start begins the dispatcher background loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop(loopCtx)

	log.Println("[dispatch] reminder dispatcher started")
	return nil
}

// Stop gracefully stops the dispatcher.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[dispatch] reminder dispatcher stopped")
	case <-ctx.Done():
		log.Println("[dispatch] reminder dispatcher stopped (timeout)")
	}

	s.running = false
	return nil
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runPass(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.runPass(ctx, now)
		}
	}
}

// runPass fetches the current month's releases once and matches them against
// every user's reminders.
func (s *Service) runPass(ctx context.Context, now time.Time) {
	releases, err := s.catalog.FetchReleasesForMonth(ctx, now.Year(), now.Month())
	if err != nil {
		log.Printf("[dispatch] month fetch failed, skipping pass: %v", err)
		return
	}

	for _, user := range s.users.List() {
		reminders, err := s.reminders.List(user.ID)
		if err != nil {
			log.Printf("[dispatch] list reminders for %s: %v", user.ID, err)
			continue
		}
		for _, reminder := range reminders {
			for _, release := range releases {
				s.maybeDispatch(user.ID, reminder, release, now)
			}
		}
	}
}

func (s *Service) maybeDispatch(userID string, reminder models.Reminder, release models.Release, now time.Time) {
	if !Matches(reminder, release) {
		return
	}
	if !Due(reminder, release, now) {
		return
	}

	key := fmt.Sprintf("%s|%s|%s", userID, reminder.DuplicateKey(), release.InteractionKey())
	s.mu.Lock()
	if s.dispatched[key] {
		s.mu.Unlock()
		return
	}
	s.dispatched[key] = true
	s.mu.Unlock()

	if err := s.notifier.Notify(userID, reminder, release); err != nil {
		log.Printf("[dispatch] notify %s: %v", key, err)
		s.mu.Lock()
		delete(s.dispatched, key)
		s.mu.Unlock()
	}
}

// Matches reports whether a release falls under a reminder's scope.
func Matches(reminder models.Reminder, release models.Release) bool {
	if reminder.ShowID != release.ShowID {
		return false
	}

	switch reminder.Scope {
	case models.ReminderScopeAll:
		return !release.IsMovie
	case models.ReminderScopeEpisode:
		return !release.IsMovie &&
			release.SeasonNumber != nil && *release.SeasonNumber == reminder.EpisodeSeason &&
			release.EpisodeNumber != nil && *release.EpisodeNumber == reminder.EpisodeNumber
	case models.ReminderScopeMovieTheatrical:
		return release.IsMovie && release.ReleaseType == models.ReleaseTypeTheatrical
	case models.ReminderScopeMovieDigital:
		return release.IsMovie && release.ReleaseType == models.ReleaseTypeDigital
	default:
		return false
	}
}

// Due reports whether the reminder's offset window has opened for the
// release and the release has not aged past a day.
func Due(reminder models.Reminder, release models.Release, now time.Time) bool {
	fireAt := release.AirDate.Add(-time.Duration(reminder.OffsetMinutes) * time.Minute)
	if now.Before(fireAt) {
		return false
	}
	return now.Sub(release.AirDate) < 24*time.Hour
}
