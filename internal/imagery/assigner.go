package imagery

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const fallbackSVG = `<svg xmlns='http://www.w3.org/2000/svg' width='300' height='190'>` +
	`<rect width='100%' height='100%' fill='#0b1220'/>` +
	`<text x='50%' y='50%' dominant-baseline='middle' text-anchor='middle' fill='#9ca3af' font-family='Arial' font-size='18'>no image</text>` +
	`</svg>`

// FallbackImage is served for every card whose image is missing or pending.
var FallbackImage = "data:image/svg+xml;charset=UTF-8," + url.PathEscape(fallbackSVG)

// Options tunes an Assigner.
type Options struct {
	Tags        string
	Concurrency int64
	Timeout     time.Duration
}

// Assigner fetches card images in the background and remembers them per
// match. Lookups never block on a fetch.
type Assigner struct {
	logger   *zap.Logger
	provider Provider
	tags     string
	timeout  time.Duration
	sem      *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	urls  map[string]string
	owner map[string]string
	cards map[string][]string
}

// NewAssigner creates an assigner backed by provider.
func NewAssigner(provider Provider, opts Options, logger *zap.Logger) *Assigner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Assigner{
		logger:   logger,
		provider: provider,
		tags:     opts.Tags,
		timeout:  opts.Timeout,
		sem:      semaphore.NewWeighted(opts.Concurrency),
		ctx:      ctx,
		cancel:   cancel,
		urls:     make(map[string]string),
		owner:    make(map[string]string),
		cards:    make(map[string][]string),
	}
}

// Assign starts one fetch per card. Results for matches that were forgotten
// in the meantime are dropped.
func (a *Assigner) Assign(matchID string, cardIDs []string) {
	a.mu.Lock()
	for _, id := range cardIDs {
		a.owner[id] = matchID
	}
	a.cards[matchID] = append(a.cards[matchID], cardIDs...)
	a.mu.Unlock()

	for _, id := range cardIDs {
		a.wg.Add(1)
		go a.fetch(matchID, id)
	}
}

func (a *Assigner) fetch(matchID, cardID string) {
	defer a.wg.Done()

	if err := a.sem.Acquire(a.ctx, 1); err != nil {
		return
	}
	defer a.sem.Release(1)

	if !a.tracked(matchID, cardID) {
		return
	}

	ctx, cancel := context.WithTimeout(a.ctx, a.timeout)
	defer cancel()

	u, err := a.provider.Fetch(ctx, a.tags)
	if err != nil {
		if a.logger != nil {
			a.logger.Debug("image fetch failed, using fallback",
				zap.String("match_id", matchID),
				zap.String("card_id", cardID),
				zap.Error(err),
			)
		}
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.owner[cardID] == matchID {
		a.urls[cardID] = u
	}
}

func (a *Assigner) tracked(matchID, cardID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner[cardID] == matchID
}

// URL returns the image of a card, or FallbackImage if none resolved yet.
func (a *Assigner) URL(cardID string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if u, ok := a.urls[cardID]; ok {
		return u
	}
	return FallbackImage
}

// Forget drops every image of a match.
func (a *Assigner) Forget(matchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.cards[matchID] {
		delete(a.urls, id)
		delete(a.owner, id)
	}
	delete(a.cards, matchID)
}

// Wait blocks until every started fetch has finished.
func (a *Assigner) Wait() {
	a.wg.Wait()
}

// Close aborts pending fetches and waits for them to return.
func (a *Assigner) Close() {
	a.cancel()
	a.wg.Wait()
}
