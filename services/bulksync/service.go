package bulksync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"watchdeck/models"
)

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrShowIDRequired = errors.New("show id is required")
	ErrNothingToSync  = errors.New("nothing to sync")
)

// SeasonCounter enumerates a show's seasons for mark-previous runs.
type SeasonCounter interface {
	FetchSeasonEpisodeCount(ctx context.Context, showID, season int) (int, error)
}

// WatchlistUpserter lands imported follows in the watchlist.
type WatchlistUpserter interface {
	Upsert(userID string, upsert models.WatchlistUpsert) (models.WatchlistItem, error)
}

// Service runs bulk operations asynchronously and exposes their jobs for
// polling. Each job gets its own cancellable context; abandoning a job stops
// scheduling further batches without touching in-flight calls.
type Service struct {
	engine    *Engine
	registry  *JobRegistry
	seasons   SeasonCounter
	watchlist WatchlistUpserter

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewService(engine *Engine, seasons SeasonCounter, watchlist WatchlistUpserter) *Service {
	return &Service{
		engine:    engine,
		registry:  NewJobRegistry(),
		seasons:   seasons,
		watchlist: watchlist,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Job returns a snapshot of a running or finished job.
func (s *Service) Job(id string) (models.SyncJob, error) {
	return s.registry.Get(id)
}

// Cancel abandons a job. The current batch finishes; no further batches run.
func (s *Service) Cancel(id string) error {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	cancel()
	return nil
}

// MarkPreviousWatched enumerates every episode up to and including the given
// position and replays them as watched. Enumeration happens before the job
// starts, so a catalog failure here is fatal and leaves no partial state.
func (s *Service) MarkPreviousWatched(ctx context.Context, userID string, showID, upToSeason, upToEpisode int) (string, error) {
	if userID == "" {
		return "", ErrUserIDRequired
	}
	if showID <= 0 {
		return "", ErrShowIDRequired
	}

	items := make([]models.WorkItem, 0, 64)
	for season := 1; season <= upToSeason; season++ {
		count, err := s.seasons.FetchSeasonEpisodeCount(ctx, showID, season)
		if err != nil {
			return "", fmt.Errorf("enumerate show %d season %d: %w", showID, season, err)
		}
		last := count
		if season == upToSeason && upToEpisode < last {
			last = upToEpisode
		}
		for episode := 1; episode <= last; episode++ {
			items = append(items, models.WorkItem{
				ShowID:        showID,
				SeasonNumber:  season,
				EpisodeNumber: episode,
				Watched:       true,
			})
		}
	}
	if len(items) == 0 {
		return "", ErrNothingToSync
	}

	return s.startJob(userID, items), nil
}

// PreviewImport parses and validates a document and reports what a replay
// would do. Nothing is mutated.
func (s *Service) PreviewImport(data []byte) (ImportPreview, error) {
	doc, err := ParseImport(data)
	if err != nil {
		return ImportPreview{}, err
	}
	return Preview(doc, s.engine.BatchSize(), s.engine.Delay()), nil
}

// StartImport validates the document, lands the tracked shows in the
// watchlist, and replays the watched history through the engine. Validation
// is complete before the first mutation.
func (s *Service) StartImport(userID string, data []byte) (string, error) {
	if userID == "" {
		return "", ErrUserIDRequired
	}

	doc, err := ParseImport(data)
	if err != nil {
		return "", err
	}

	items := doc.WorkItems()
	jobID := s.startJob(userID, items)

	now := time.Now().UTC()
	for _, show := range doc.Shows {
		upsert := models.WatchlistUpsert{
			ShowID:     show.ShowID,
			MediaType:  show.MediaType,
			Name:       show.Name,
			Year:       show.Year,
			PosterURL:  show.PosterURL,
			SyncSource: "import:" + jobID,
			SyncedAt:   &now,
		}
		if _, err := s.watchlist.Upsert(userID, upsert); err != nil {
			log.Printf("[bulksync] watchlist upsert %s failed: %v", upsert.Key(), err)
		}
	}

	return jobID, nil
}

func (s *Service) startJob(userID string, items []models.WorkItem) string {
	jobID := s.registry.Start(len(items))

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[jobID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			s.mu.Lock()
			delete(s.cancels, jobID)
			s.mu.Unlock()
		}()

		result, err := s.engine.Run(ctx, userID, items, func(current, total int) {
			s.registry.Progress(jobID, current)
		})
		if err != nil {
			log.Printf("[bulksync] job %s finished with error: %v", jobID, err)
		}
		s.registry.Finish(jobID, result, err != nil)
	}()

	return jobID
}
