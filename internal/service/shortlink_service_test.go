package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/codegen"
	"shorturl-go/internal/dto"
	"shorturl-go/internal/model"
	"shorturl-go/internal/repository"
	"shorturl-go/pkg/logsink"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceGenerator 依次返回预设的短码
type sequenceGenerator struct {
	codes []string
	calls int
	err   error
}

func (g *sequenceGenerator) Generate() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	code := g.codes[g.calls%len(g.codes)]
	g.calls++
	return code, nil
}

type notification struct {
	level   logsink.Level
	pkg     logsink.Package
	message string
}

type recordingNotifier struct {
	mu      sync.Mutex
	entries []notification
}

func (n *recordingNotifier) Notify(level logsink.Level, pkg logsink.Package, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, notification{level: level, pkg: pkg, message: message})
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.entries))
	for _, e := range n.entries {
		out = append(out, e.message)
	}
	return out
}

type recordingRecorder struct {
	codes []string
}

func (r *recordingRecorder) Record(code string, _ model.ClickEvent) {
	r.codes = append(r.codes, code)
}

func newTestService(t *testing.T, opts ...Option) (*ShortURLService, *repository.MemoryStore, *fakeClock, *recordingNotifier) {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := newFakeClock()
	notifier := &recordingNotifier{}
	base := []Option{WithClock(clock.Now), WithNotifier(notifier)}
	svc := NewShortURLService(store, codegen.NewGenerator(codegen.DefaultLength), append(base, opts...)...)
	return svc, store, clock, notifier
}

func createReq(url, validity, shortcode string) dto.CreateShortURLRequest {
	req := dto.CreateShortURLRequest{URL: url}
	if validity != "" {
		req.Validity = json.RawMessage(validity)
	}
	if shortcode != "" {
		req.ShortCode = json.RawMessage(shortcode)
	}
	return req
}

func TestCreateShortURL_Generated(t *testing.T) {
	svc, store, clock, notifier := newTestService(t)

	entry, err := svc.CreateShortURL(context.Background(), createReq("https://example.com/page", "", ""))
	require.NoError(t, err)

	assert.Len(t, entry.Code, 6)
	assert.Regexp(t, `^[0-9A-Za-z]{6}$`, entry.Code)
	assert.Equal(t, clock.Now(), entry.CreatedAt)
	assert.Equal(t, clock.Now().Add(30*time.Minute), entry.ExpiresAt)

	stored, err := store.Get(entry.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", stored.TargetURL)
	assert.Equal(t, []string{"Shortened URL created: " + entry.Code}, notifier.messages())
}

func TestCreateShortURL_CustomCodeAndValidity(t *testing.T) {
	svc, _, clock, _ := newTestService(t)

	entry, err := svc.CreateShortURL(context.Background(), createReq("  https://example.com  ", "5", `"promo2025"`))
	require.NoError(t, err)

	assert.Equal(t, "promo2025", entry.Code)
	assert.Equal(t, "https://example.com", entry.TargetURL)
	assert.Equal(t, clock.Now().Add(5*time.Minute), entry.ExpiresAt)
}

func TestCreateShortURL_NullValidityUsesDefault(t *testing.T) {
	svc, _, clock, _ := newTestService(t, WithDefaultValidity(45))

	entry, err := svc.CreateShortURL(context.Background(), createReq("https://example.com", "null", `""`))
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(45*time.Minute), entry.ExpiresAt)
}

func TestCreateShortURL_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateShortURLRequest
		want    *apperrors.AppError
		message string
	}{
		{name: "empty url", req: createReq("", "", ""), want: apperrors.InvalidURL(), message: "Invalid URL"},
		{name: "relative url", req: createReq("/path", "", ""), want: apperrors.InvalidURL(), message: "Invalid URL"},
		{name: "zero validity", req: createReq("https://example.com", "0", ""), want: apperrors.InvalidValidity(), message: "Invalid validity"},
		{name: "fractional validity", req: createReq("https://example.com", "1.5", ""), want: apperrors.InvalidValidity(), message: "Invalid validity"},
		{name: "string validity", req: createReq("https://example.com", `"10"`, ""), want: apperrors.InvalidValidity(), message: "Invalid validity"},
		{name: "short shortcode", req: createReq("https://example.com", "", `"ab"`), want: apperrors.InvalidShortcodeFormat(), message: "Invalid shortcode format"},
		{name: "symbol shortcode", req: createReq("https://example.com", "", `"ab-cd"`), want: apperrors.InvalidShortcodeFormat(), message: "Invalid shortcode format"},
		{name: "numeric shortcode", req: createReq("https://example.com", "", `12345`), want: apperrors.InvalidShortcodeFormat(), message: "Invalid shortcode format"},
		{name: "url checked before validity", req: createReq("bad", "-1", `"!"`), want: apperrors.InvalidURL(), message: "Invalid URL"},
		{name: "validity checked before shortcode", req: createReq("https://example.com", "-1", `"!"`), want: apperrors.InvalidValidity(), message: "Invalid validity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _, notifier := newTestService(t)

			_, err := svc.CreateShortURL(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want.Code, apperrors.From(err).Code)
			assert.Equal(t, []string{tt.message}, notifier.messages())
			assert.Equal(t, 0, store.Summary(time.Now()).Entries)
		})
	}
}

func TestCreateShortURL_Collision(t *testing.T) {
	svc, _, _, notifier := newTestService(t)

	_, err := svc.CreateShortURL(context.Background(), createReq("https://a.example", "", `"taken1"`))
	require.NoError(t, err)

	_, err = svc.CreateShortURL(context.Background(), createReq("https://b.example", "", `"taken1"`))
	assert.ErrorIs(t, err, apperrors.ShortcodeCollision())
	assert.Contains(t, notifier.messages(), "Shortcode collision")
}

func TestCreateShortURL_RetriesGeneratedCollision(t *testing.T) {
	store := repository.NewMemoryStore()
	_, err := store.Create("aaaaaa", "https://taken.example", time.Now(), 30)
	require.NoError(t, err)

	gen := &sequenceGenerator{codes: []string{"aaaaaa", "aaaaaa", "bbbbbb"}}
	svc := NewShortURLService(store, gen)

	entry, err := svc.CreateShortURL(context.Background(), createReq("https://example.com", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "bbbbbb", entry.Code)
	assert.Equal(t, 3, gen.calls)
}

func TestCreateShortURL_AttemptsExhausted(t *testing.T) {
	store := repository.NewMemoryStore()
	_, err := store.Create("aaaaaa", "https://taken.example", time.Now(), 30)
	require.NoError(t, err)

	gen := &sequenceGenerator{codes: []string{"aaaaaa"}}
	svc := NewShortURLService(store, gen, WithMaxAttempts(4))

	_, err = svc.CreateShortURL(context.Background(), createReq("https://example.com", "", ""))
	assert.ErrorIs(t, err, apperrors.SystemError(nil))
	assert.Equal(t, 4, gen.calls)
}

func TestCreateShortURL_GeneratorError(t *testing.T) {
	gen := &sequenceGenerator{err: errors.New("entropy unavailable")}
	svc := NewShortURLService(repository.NewMemoryStore(), gen)

	_, err := svc.CreateShortURL(context.Background(), createReq("https://example.com", "", ""))
	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.KindInternal, appErr.Kind)
	assert.EqualError(t, errors.Unwrap(appErr), "entropy unavailable")
}

func TestRedirectToTargetURL(t *testing.T) {
	recorder := &recordingRecorder{}
	svc, _, clock, notifier := newTestService(t, WithClickRecorder(recorder))

	entry, err := svc.CreateShortURL(context.Background(), createReq("https://example.com/x", "1", `"go123"`))
	require.NoError(t, err)

	target, err := svc.RedirectToTargetURL(context.Background(), entry.Code, Visit{Referrer: "https://ref.example", SourceAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", target)

	clock.Advance(time.Minute)
	_, err = svc.RedirectToTargetURL(context.Background(), entry.Code, Visit{SourceAddress: "10.0.0.2"})
	require.NoError(t, err, "expiry is exclusive: now == expiresAt still redirects")

	clock.Advance(time.Millisecond)
	_, err = svc.RedirectToTargetURL(context.Background(), entry.Code, Visit{SourceAddress: "10.0.0.3"})
	assert.ErrorIs(t, err, apperrors.ShortcodeExpired())

	_, err = svc.RedirectToTargetURL(context.Background(), "nope", Visit{})
	assert.ErrorIs(t, err, apperrors.ShortcodeNotFound())

	assert.Equal(t, []string{"go123", "go123"}, recorder.codes)
	assert.Equal(t, []string{
		"Shortened URL created: go123",
		"Redirected: go123",
		"Redirected: go123",
		"Shortcode expired",
		"Shortcode not found",
	}, notifier.messages())
}

func TestGetStats(t *testing.T) {
	svc, _, clock, _ := newTestService(t)

	_, err := svc.CreateShortURL(context.Background(), createReq("https://example.com", "1", `"stats1"`))
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	_, err = svc.RedirectToTargetURL(context.Background(), "stats1", Visit{Referrer: "https://ref.example", SourceAddress: "1.1.1.1"})
	require.NoError(t, err)
	clock.Advance(10 * time.Second)
	_, err = svc.RedirectToTargetURL(context.Background(), "stats1", Visit{SourceAddress: "2.2.2.2"})
	require.NoError(t, err)

	// 过期后仍可查询统计
	clock.Advance(time.Hour)
	_, err = svc.RedirectToTargetURL(context.Background(), "stats1", Visit{SourceAddress: "3.3.3.3"})
	require.ErrorIs(t, err, apperrors.ShortcodeExpired())

	stats, err := svc.GetStats(context.Background(), "stats1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", stats.URL)
	assert.Equal(t, "2025-01-01T12:00:00.000Z", stats.Created)
	assert.Equal(t, "2025-01-01T12:01:00.000Z", stats.Expiry)
	assert.Equal(t, 2, stats.Clicks)
	require.Len(t, stats.ClickData, 2)
	assert.Equal(t, "2025-01-01T12:00:10.000Z", stats.ClickData[0].Timestamp)
	assert.Equal(t, "1.1.1.1", stats.ClickData[0].IP)
	assert.Equal(t, "2.2.2.2", stats.ClickData[1].IP)
	assert.Nil(t, stats.ClickData[1].Referrer)

	_, err = svc.GetStats(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ShortcodeNotFound())
}

func TestCreateShortURL_ConcurrentSameCode(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		collided  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateShortURL(context.Background(), createReq("https://example.com", "", `"race01"`))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ShortcodeCollision()):
				collided++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, collided)
}
