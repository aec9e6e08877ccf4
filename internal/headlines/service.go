package headlines

import (
	"context"
	"slices"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 24 * time.Hour

// Source produces one page of headlines for a selection.
// newsapi.Client is the production implementation; tests swap in fakes.
type Source interface {
	Top(ctx context.Context, sel model.Selection) ([]model.Article, error)
}

type Options struct {
	// TTL of a cached page. Zero means DefaultTTL.
	TTL time.Duration
	// CoalesceMisses shares one upstream call between concurrent misses on
	// the same key. Off by default: concurrent cold misses each call upstream
	// and the last write wins.
	CoalesceMisses bool
}

// Service is the cached fetcher behind the headlines page. It never returns
// an error: any failure on the way to the upstream API yields an empty list.
type Service struct {
	store  store.Store
	source Source
	logger *zap.Logger
	ttl    time.Duration
	group  *singleflight.Group
}

func NewService(st store.Store, source Source, logger *zap.Logger, opts Options) *Service {
	s := &Service{
		store:  st,
		source: source,
		logger: logger,
		ttl:    opts.TTL,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if opts.CoalesceMisses {
		s.group = &singleflight.Group{}
	}
	return s
}

// GetArticles normalizes the raw selection and fetches it.
func (s *Service) GetArticles(ctx context.Context, region, category string, page int) []model.Article {
	return s.Fetch(ctx, model.Normalize(region, category, page))
}

// Fetch returns the cached page for sel, or fetches, caches and returns it.
// The result is never nil. Callers cannot cancel an in-flight fetch.
func (s *Service) Fetch(ctx context.Context, sel model.Selection) []model.Article {
	ctx = context.WithoutCancel(ctx)
	key := sel.Key()
	logger := s.logger.With(zap.String("key", key))

	articles, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logger.Error("Cache lookup failed", zap.Error(err))
	} else if ok {
		logger.Debug("Cache hit", zap.Int("articles", len(articles)))
		return articles
	}

	if s.group == nil {
		return s.fetchLive(ctx, sel, logger)
	}

	v, _, shared := s.group.Do(key, func() (interface{}, error) {
		return s.fetchLive(ctx, sel, logger), nil
	})
	if shared {
		logger.Debug("Shared in-flight fetch")
	}
	return slices.Clone(v.([]model.Article))
}

func (s *Service) fetchLive(ctx context.Context, sel model.Selection, logger *zap.Logger) []model.Article {
	logger.Info("Fetching headlines",
		zap.String("region", sel.Region),
		zap.String("category", sel.Category),
		zap.Int("page", sel.Page))

	articles, err := s.source.Top(ctx, sel)
	if err != nil {
		logger.Warn("Fetching headlines failed", zap.Error(err))
		return []model.Article{}
	}
	if len(articles) == 0 {
		// Left uncached so the next request tries upstream again.
		logger.Info("No headlines returned")
		return []model.Article{}
	}

	if err := s.store.Put(ctx, sel.Key(), articles, s.ttl); err != nil {
		logger.Error("Cache store failed", zap.Error(err))
	}
	return articles
}
