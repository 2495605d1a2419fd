// Package search drives the repository search view: it turns query and
// filter edits into debounced, de-duplicated searches and publishes the
// resulting state, latest search wins.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ghexplorer/github"
	"ghexplorer/logger"
	"ghexplorer/models"
)

const (
	// DefaultQuery is searched while the query box is empty.
	DefaultQuery = "stars:>1000"
	// DefaultDebounce is the quiet period before an edit becomes a search.
	DefaultDebounce = 500 * time.Millisecond
)

// Searcher runs repository searches. *github.Client implements it.
type Searcher interface {
	SearchRepositories(ctx context.Context, query string, filters models.SearchFilters) (*models.SearchResult, error)
}

// Status of the search view.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Intent is one search request as the user expressed it.
type Intent struct {
	Query   string
	Filters models.SearchFilters
}

// Equal compares the fields that make two intents the same search: the
// query as sent, page, language, sort and order.
func (i Intent) Equal(o Intent) bool {
	return i.EffectiveQuery() == o.EffectiveQuery() &&
		i.Filters.Page == o.Filters.Page &&
		i.Filters.Language == o.Filters.Language &&
		i.Filters.Sort == o.Filters.Sort &&
		i.Filters.Order == o.Filters.Order
}

// EffectiveQuery is the query actually sent, with DefaultQuery for an empty one.
func (i Intent) EffectiveQuery() string {
	if q := strings.TrimSpace(i.Query); q != "" {
		return q
	}
	return DefaultQuery
}

// State is a snapshot of the search view. Intent is the search the
// Result (or Error) belongs to.
type State struct {
	Status  Status
	Loading bool
	Intent  Intent
	Result  *models.SearchResult
	Error   string
	Seq     uint64
}

// PageCount is the number of result pages, 0 without a result.
func (s State) PageCount() int {
	return s.Result.PageCount(s.Intent.Filters.PerPage)
}

// Controller owns the query and filters of the search view.
//
// Subscribers are called one at a time in state order. They must not call
// Controller methods that change state.
type Controller struct {
	searcher Searcher
	debounce time.Duration
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	query    string
	filters  models.SearchFilters
	state    State
	last     *Intent
	timer    *time.Timer
	gen      uint64
	seq      uint64
	inflight context.CancelFunc
	closed   bool
	wg       sync.WaitGroup

	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     map[int]func(State)
	nextSub  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period. Zero or less keeps DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithPageSize sets the results per page.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 && n <= models.MaxPerPage {
			c.filters.PerPage = n
		}
	}
}

// NewController returns an idle controller with the landing view filters.
func NewController(searcher Searcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		searcher: searcher,
		debounce: DefaultDebounce,
		log:      logger.Named("search"),
		ctx:      ctx,
		cancel:   cancel,
		filters:  models.DefaultSearchFilters(),
		state:    State{Status: StatusIdle},
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start searches the current intent right away, without debounce.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	intent := c.intentLocked()
	if c.last != nil && c.last.Equal(intent) {
		c.mu.Unlock()
		return
	}
	c.dispatchLocked(intent)
}

// Close cancels pending and in-flight searches and waits for them to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query returns the query text as edited, which may not be searched yet.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Filters returns the filters as edited, which may not be searched yet.
func (c *Controller) Filters() models.SearchFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Subscribe calls fn with the current state and then with every new state.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	st := c.state
	c.notifyMu.Lock()
	c.mu.Unlock()

	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	fn(st)
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

// SetQuery replaces the query text.
func (c *Controller) SetQuery(query string) {
	c.edit(func() { c.query = query })
}

// SetLanguage filters by language; models.LanguageAll removes the filter.
func (c *Controller) SetLanguage(language string) {
	c.edit(func() { c.filters.Language = language })
}

// SetSort changes the sort key.
func (c *Controller) SetSort(key models.SortKey) {
	c.edit(func() { c.filters.Sort = key })
}

// SetOrder changes the sort direction.
func (c *Controller) SetOrder(order models.SortOrder) {
	c.edit(func() { c.filters.Order = order })
}

// SetFilters replaces language, sort and order. Zero fields keep their
// defaults and the page size is kept unless f sets one.
func (c *Controller) SetFilters(f models.SearchFilters) {
	c.edit(func() {
		perPage := c.filters.PerPage
		c.filters = f.WithDefaults()
		if f.PerPage == 0 {
			c.filters.PerPage = perPage
		}
	})
}

// ApplyQuickFilter replaces the query with the preset's and applies its
// language and sort overrides.
func (c *Controller) ApplyQuickFilter(qf models.QuickFilter) {
	c.edit(func() {
		c.query = qf.Query
		if qf.Language != "" {
			c.filters.Language = qf.Language
		}
		if qf.Sort != "" {
			c.filters.Sort = qf.Sort
		}
	})
}

// Reset returns to the landing view: empty query and default filters.
func (c *Controller) Reset() {
	c.edit(func() {
		perPage := c.filters.PerPage
		c.query = ""
		c.filters = models.DefaultSearchFilters()
		c.filters.PerPage = perPage
	})
}

// NextPage searches the next page right away. It returns false when there
// is no result yet or the current page is the last one.
func (c *Controller) NextPage() bool {
	c.mu.Lock()
	if c.closed || c.state.Result == nil || c.filters.Page >= c.state.Result.PageCount(c.filters.PerPage) {
		c.mu.Unlock()
		return false
	}
	c.filters.Page++
	c.pageLocked()
	return true
}

// PreviousPage searches the previous page right away. It returns false on
// the first page.
func (c *Controller) PreviousPage() bool {
	c.mu.Lock()
	if c.closed || c.filters.Page <= 1 {
		c.mu.Unlock()
		return false
	}
	c.filters.Page--
	c.pageLocked()
	return true
}

// Retry searches the current intent again, even if it equals the last one.
func (c *Controller) Retry() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.dispatchLocked(c.intentLocked())
}

// edit applies fn, resets the page and schedules a debounced search.
func (c *Controller) edit(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	fn()
	c.filters.Page = 1

	c.stopTimerLocked()
	gen := c.gen
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(gen) })
}

// fire runs when a debounce timer expires.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	intent := c.intentLocked()
	if c.last != nil && c.last.Equal(intent) {
		c.log.Debug("Skipping duplicate search", zap.String("q", intent.EffectiveQuery()))
		c.mu.Unlock()
		return
	}
	c.dispatchLocked(intent)
}

// pageLocked dispatches a page change, superseding any pending edit.
func (c *Controller) pageLocked() {
	c.stopTimerLocked()
	intent := c.intentLocked()
	if c.last != nil && c.last.Equal(intent) {
		c.mu.Unlock()
		return
	}
	c.dispatchLocked(intent)
}

func (c *Controller) stopTimerLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) intentLocked() Intent {
	return Intent{Query: c.query, Filters: c.filters}
}

// dispatchLocked starts a search for intent and unlocks c.mu.
func (c *Controller) dispatchLocked(intent Intent) {
	if c.inflight != nil {
		c.inflight()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	c.last = &intent

	c.state = State{
		Status:  StatusLoading,
		Loading: true,
		Intent:  intent,
		Result:  c.state.Result,
		Seq:     seq,
	}
	c.wg.Add(1)
	c.publishLocked()

	go c.run(ctx, cancel, seq, intent)
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, seq uint64, intent Intent) {
	defer c.wg.Done()
	defer cancel()

	q := intent.EffectiveQuery()
	res, err := c.searcher.SearchRepositories(ctx, q, intent.Filters)

	c.mu.Lock()
	if seq != c.seq || c.closed {
		c.log.Debug("Discarding superseded search", zap.Uint64("seq", seq), zap.String("q", q))
		c.mu.Unlock()
		return
	}
	c.inflight = nil

	if err != nil {
		c.state = State{
			Status: StatusError,
			Intent: intent,
			Error:  github.Message(err),
			Seq:    seq,
		}
	} else {
		c.state = State{
			Status: StatusSuccess,
			Intent: intent,
			Result: res,
			Seq:    seq,
		}
	}
	c.publishLocked()
}

// publishLocked hands the current state to subscribers in order and unlocks c.mu.
func (c *Controller) publishLocked() {
	st := c.state
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.subMu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
