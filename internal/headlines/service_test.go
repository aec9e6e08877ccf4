package headlines

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/newsapi"
	"newsdesk/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockGetter stands in for the network. It counts calls and records URLs.
type MockGetter struct {
	mu      sync.Mutex
	Body    string
	Err     error
	Release chan struct{}
	calls   int32
	urls    []string
}

func (m *MockGetter) Get(ctx context.Context, rawURL string) ([]byte, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.urls = append(m.urls, rawURL)
	m.mu.Unlock()

	if m.Release != nil {
		<-m.Release
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return []byte(m.Body), nil
}

func (m *MockGetter) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

func (m *MockGetter) LastURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.urls) == 0 {
		return ""
	}
	return m.urls[len(m.urls)-1]
}

const twoArticles = `{"data":[
	{"title":"One","description":"D1","url":"https://example.com/1","image_url":"https://example.com/1.jpg","published_at":"2025-12-13T10:00:00Z","source":"example.com"},
	{"title":"Two","url":"https://example.com/2"}
]}`

func newTestService(t *testing.T, getter newsapi.Getter, opts Options) (*Service, store.Store) {
	t.Helper()
	st, err := store.NewMemoryStore(100)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	client := newsapi.NewClient("", "test-api-token", 3, getter)
	return NewService(st, client, zap.NewNop(), opts), st
}

func TestService_CacheHitSkipsNetwork(t *testing.T) {
	getter := &MockGetter{Body: twoArticles}
	svc, _ := newTestService(t, getter, Options{})
	ctx := context.Background()

	first := svc.GetArticles(ctx, "us", "business", 1)
	second := svc.GetArticles(ctx, "us", "business", 1)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, getter.Calls(), "second call should be served from cache")
}

func TestService_DefaultSelection(t *testing.T) {
	getter := &MockGetter{Body: twoArticles}
	svc, st := newTestService(t, getter, Options{})
	ctx := context.Background()

	svc.GetArticles(ctx, "", "", 0)

	assert.Equal(t,
		"https://api.thenewsapi.com/v1/news/top?api_token=test-api-token&locale=us&categories=general&limit=3&page=1",
		getter.LastURL())

	_, ok, err := st.Get(ctx, "us-general-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// page 0 and page 1 share the entry
	svc.GetArticles(ctx, "us", "general", 1)
	svc.GetArticles(ctx, "  ", "", -3)
	assert.Equal(t, 1, getter.Calls())
}

func TestService_RequestForSelection(t *testing.T) {
	getter := &MockGetter{Body: twoArticles}
	svc, st := newTestService(t, getter, Options{})
	ctx := context.Background()

	svc.GetArticles(ctx, "gb", "technology", 2)

	assert.Contains(t, getter.LastURL(), "locale=gb&categories=technology&limit=3&page=2")
	_, ok, _ := st.Get(ctx, "gb-technology-2")
	assert.True(t, ok)
}

func TestService_PartialArticle(t *testing.T) {
	getter := &MockGetter{Body: `{"data":[{"title":"T","url":"https://x"}]}`}
	svc, _ := newTestService(t, getter, Options{})

	got := svc.GetArticles(context.Background(), "", "", 1)

	require.Len(t, got, 1)
	assert.Equal(t, model.Article{Title: "T", URL: "https://x"}, got[0])
}

func TestService_NetworkFailureIsEmptyAndUncached(t *testing.T) {
	getter := &MockGetter{Err: errors.New("connection refused")}
	svc, st := newTestService(t, getter, Options{})
	ctx := context.Background()

	got := svc.GetArticles(ctx, "", "", 1)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, ok, _ := st.Get(ctx, "us-general-1")
	assert.False(t, ok, "failures must not be cached")

	// Upstream recovers; the next request goes out again.
	getter.Err = nil
	getter.Body = twoArticles
	got = svc.GetArticles(ctx, "", "", 1)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, getter.Calls())
}

func TestService_EmptyResultsAreNotCached(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty data", `{"data":[]}`},
		{"no data field", `{"error":"Something went wrong"}`},
		{"data not an array", `{"data":"nope"}`},
		{"malformed json", `{"data":[{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := &MockGetter{Body: tt.body}
			svc, st := newTestService(t, getter, Options{})
			ctx := context.Background()

			got := svc.GetArticles(ctx, "gb", "sports", 1)
			assert.NotNil(t, got)
			assert.Empty(t, got)

			_, ok, _ := st.Get(ctx, "gb-sports-1")
			assert.False(t, ok)

			svc.GetArticles(ctx, "gb", "sports", 1)
			assert.Equal(t, 2, getter.Calls(), "empty result should be retried, not cached")
		})
	}
}

func TestService_EntryExpires(t *testing.T) {
	getter := &MockGetter{Body: twoArticles}
	svc, _ := newTestService(t, getter, Options{TTL: 50 * time.Millisecond})
	ctx := context.Background()

	svc.GetArticles(ctx, "au", "health", 1)
	svc.GetArticles(ctx, "au", "health", 1)
	require.Equal(t, 1, getter.Calls())

	time.Sleep(150 * time.Millisecond)

	svc.GetArticles(ctx, "au", "health", 1)
	assert.Equal(t, 2, getter.Calls())
}

func TestService_CancelledContextStillFetches(t *testing.T) {
	getter := &MockGetter{Body: twoArticles}
	svc, _ := newTestService(t, getter, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := svc.GetArticles(ctx, "ie", "science", 1)
	assert.Len(t, got, 2)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]model.Article, bool, error) {
	return nil, false, errors.New("store down")
}

func (brokenStore) Put(context.Context, string, []model.Article, time.Duration) error {
	return errors.New("store down")
}

func (brokenStore) Close() error { return nil }

func TestService_StoreFailuresAreContained(t *testing.T) {
	getter := &MockGetter{Body: twoArticles}
	client := newsapi.NewClient("", "tok", 3, getter)
	svc := NewService(brokenStore{}, client, zap.NewNop(), Options{})

	got := svc.GetArticles(context.Background(), "sg", "general", 1)
	assert.Len(t, got, 2, "a broken cache should not hide live results")
}

func TestService_ConcurrentDistinctAndIdenticalKeys(t *testing.T) {
	getter := &MockGetter{Body: twoArticles}
	svc, _ := newTestService(t, getter, Options{})
	ctx := context.Background()

	regions := []string{"us", "gb", "au", "ca"}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got := svc.GetArticles(ctx, regions[i%len(regions)], "general", 1)
			assert.Len(t, got, 2)
		}(i)
	}
	wg.Wait()

	// Cold-key races may duplicate calls, but every key is fetched at least once.
	assert.GreaterOrEqual(t, getter.Calls(), len(regions))
	assert.LessOrEqual(t, getter.Calls(), 40)
}

func TestService_CoalesceMisses(t *testing.T) {
	getter := &MockGetter{Body: twoArticles, Release: make(chan struct{})}
	svc, _ := newTestService(t, getter, Options{CoalesceMisses: true})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]model.Article, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.GetArticles(ctx, "nz", "entertainment", 3)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(getter.Release)
	wg.Wait()

	assert.Equal(t, 1, getter.Calls())
	for _, r := range results {
		assert.Len(t, r, 2)
	}
}

func TestService_WithRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	st, err := store.NewRedisStore(mr.Addr(), 100)
	require.NoError(t, err)
	defer st.Close()

	getter := &MockGetter{Body: twoArticles}
	svc := NewService(st, newsapi.NewClient("", "tok", 3, getter), zap.NewNop(), Options{})
	ctx := context.Background()

	first := svc.GetArticles(ctx, "gb", "business", 1)
	second := svc.GetArticles(ctx, "gb", "business", 1)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, getter.Calls())
	assert.Equal(t, DefaultTTL, mr.TTL("headlines:gb-business-1"))
}
