// Package listctl implements the incremental, filterable voter list that
// backs every booth screen: paged fetches on demand, filter and search
// driven resets, and bulk status mutation reconciled against the server.
//
// A Controller is driven from a Bubble Tea Update loop. Every method runs to
// completion on that loop; network work is returned as a tea.Cmd and its
// result comes back through Update as a message.
package listctl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

const (
	defaultDebounce = 400 * time.Millisecond
	defaultTimeout  = 30 * time.Second
)

// QueryFunc fetches one page of voters for a booth under filter.
type QueryFunc[F comparable] func(
	ctx context.Context,
	req directory.PageRequest,
	filter F,
) (*directory.Page, error)

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	// PageSize defaults to model.PageSize.
	PageSize int

	// Debounce is the search quiet period. Negative disables it.
	Debounce time.Duration

	// Timeout bounds each network call.
	Timeout time.Duration

	Logger *slog.Logger
}

// Controller owns the loaded voters of one booth under one filter
// vocabulary F. The booth is fixed for the controller's lifetime; a new
// booth needs a new Controller.
type Controller[F comparable] struct {
	id    string
	scope int
	query QueryFunc[F]
	opts  Options
	log   *slog.Logger

	items    []model.Voter
	total    int
	page     int
	hasMore  bool
	fetching bool

	// gen changes on every reset. Responses tagged with an older gen are
	// discarded.
	gen uint64

	// pendingReset is set when a reset was requested while a fetch was in
	// flight; the reset is issued once that fetch settles.
	pendingReset bool

	// resetDue is true from a reset request until a reset page lands.
	// While set, items do not belong to the current filter.
	resetDue bool

	filter        F
	search        string
	pendingSearch string
	searchSeq     uint64
	searchDue     bool

	selection []string
	selected  map[string]bool

	submitting bool
	lastErr    error
	closed     bool
}

// New creates a controller for booth scope starting at filter.
func New[F comparable](
	scope int,
	filter F,
	query QueryFunc[F],
	opts Options,
) *Controller[F] {
	if opts.PageSize <= 0 {
		opts.PageSize = model.PageSize
	}
	if opts.Debounce == 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	return &Controller[F]{
		id:       id,
		scope:    scope,
		query:    query,
		opts:     opts,
		log:      logger.With("booth", scope, "list", id[:8]),
		page:     1,
		hasMore:  true,
		filter:   filter,
		selected: make(map[string]bool),
	}
}

// Init loads the first page.
func (c *Controller[F]) Init() tea.Cmd {
	return c.reset()
}

// Update applies a controller message. Messages owned by another
// controller, and every message after Close, are ignored.
func (c *Controller[F]) Update(msg tea.Msg) tea.Cmd {
	if c.closed {
		return nil
	}
	if o, ok := msg.(Owned); !ok || o.OwnerID() != c.id {
		return nil
	}

	switch msg := msg.(type) {
	case PageLoadedMsg:
		return c.handleLoaded(msg)
	case SearchSettledMsg:
		return c.handleSearchSettled(msg)
	case BulkDoneMsg:
		return c.handleBulkDone(msg)
	case VoteToggledMsg:
		return c.handleVoteToggled(msg)
	}
	return nil
}

// SetFilter switches the filter and restarts from page 1 immediately.
func (c *Controller[F]) SetFilter(f F) tea.Cmd {
	if c.closed || f == c.filter {
		return nil
	}
	c.filter = f
	return c.reset()
}

// SetSearch records new search text and (re)starts the debounce timer.
// Only the timer armed by the last call commits the text.
func (c *Controller[F]) SetSearch(text string) tea.Cmd {
	if c.closed {
		return nil
	}
	c.pendingSearch = text
	c.searchSeq++
	c.searchDue = true

	settled := SearchSettledMsg{Owner: c.id, Seq: c.searchSeq}
	if c.opts.Debounce < 0 {
		return func() tea.Msg { return settled }
	}
	return tea.Tick(c.opts.Debounce, func(time.Time) tea.Msg {
		return settled
	})
}

// Refresh reloads from page 1 under the current filter. It is used for
// manual retries and to reconcile after mutations.
func (c *Controller[F]) Refresh() tea.Cmd {
	if c.closed {
		return nil
	}
	return c.reset()
}

// CanLoadMore reports whether a scroll-triggered page advance is allowed.
// More data must exist and nothing may be in flight. The items must
// belong to the current filter with no search edit waiting on its timer,
// and at least one full page must be loaded.
func (c *Controller[F]) CanLoadMore() bool {
	return !c.closed &&
		c.hasMore &&
		!c.fetching &&
		!c.resetDue &&
		!c.searchDue &&
		len(c.items) >= c.opts.PageSize
}

// MaybeLoadMore is the scroll-proximity trigger. It is level-triggered:
// callers report whether the end-of-list sentinel is currently visible
// each time the view settles, and the controller decides from its current
// state whether to fetch the next page.
func (c *Controller[F]) MaybeLoadMore(sentinelVisible bool) tea.Cmd {
	if !sentinelVisible || !c.CanLoadMore() {
		return nil
	}
	c.page++
	return c.load(false)
}

// Close tears the controller down. Responses still in flight are ignored
// when they arrive.
func (c *Controller[F]) Close() {
	c.closed = true
}

// reset restarts the list from page 1 under a new generation.
func (c *Controller[F]) reset() tea.Cmd {
	c.page = 1
	c.gen++
	c.resetDue = true
	if c.fetching {
		c.pendingReset = true
		return nil
	}
	return c.load(true)
}

// load issues a query for the current page. It is a no-op while another
// fetch is in flight.
func (c *Controller[F]) load(reset bool) tea.Cmd {
	if c.closed || c.fetching {
		return nil
	}
	c.fetching = true
	c.pendingReset = false

	owner, gen := c.id, c.gen
	query, filter, timeout := c.query, c.filter, c.opts.Timeout
	req := directory.PageRequest{
		Booth:  c.scope,
		Page:   c.page,
		Limit:  c.opts.PageSize,
		Search: c.search,
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		page, err := query(ctx, req, filter)
		return PageLoadedMsg{
			Owner:  owner,
			Gen:    gen,
			Page:   req.Page,
			Reset:  reset,
			Result: page,
			Err:    err,
		}
	}
}

func (c *Controller[F]) handleLoaded(msg PageLoadedMsg) tea.Cmd {
	c.fetching = false

	if msg.Gen != c.gen {
		c.log.Debug("discarding stale page", "page", msg.Page)
		return c.flushPendingReset()
	}

	if msg.Err != nil {
		c.lastErr = msg.Err
		c.log.Error("loading voters failed", "page", msg.Page, "err", msg.Err)
		if !msg.Reset && c.page == msg.Page {
			c.page = msg.Page - 1
		}
		return c.flushPendingReset()
	}

	c.lastErr = nil
	var items []model.Voter
	if msg.Result != nil {
		c.total = msg.Result.Total
		items = msg.Result.Items
	}

	if msg.Reset {
		c.items = append([]model.Voter(nil), items...)
		c.resetDue = false
	} else {
		c.warnDuplicates(items)
		c.items = append(c.items, items...)
	}
	c.hasMore = len(items) == c.opts.PageSize

	return c.flushPendingReset()
}

func (c *Controller[F]) flushPendingReset() tea.Cmd {
	if c.pendingReset {
		return c.load(true)
	}
	return nil
}

// warnDuplicates logs ids of an appended page that are already loaded.
// Offset pagination over a mutable filter can shift records across page
// boundaries; this is not corrected, only surfaced.
func (c *Controller[F]) warnDuplicates(page []model.Voter) {
	if len(page) == 0 || len(c.items) == 0 {
		return
	}
	seen := make(map[string]bool, len(c.items))
	for _, v := range c.items {
		seen[v.ID] = true
	}
	dupes := 0
	for _, v := range page {
		if seen[v.ID] {
			dupes++
		}
	}
	if dupes > 0 {
		c.log.Warn("page repeats loaded voters", "page", c.page, "duplicates", dupes)
	}
}

func (c *Controller[F]) handleSearchSettled(msg SearchSettledMsg) tea.Cmd {
	if msg.Seq != c.searchSeq {
		return nil
	}
	c.searchDue = false
	text := strings.TrimSpace(c.pendingSearch)
	if text == c.search {
		return nil
	}
	c.search = text
	return c.reset()
}

// ID returns the controller instance id carried by its messages.
func (c *Controller[F]) ID() string { return c.id }

// Scope returns the booth number the controller is bound to.
func (c *Controller[F]) Scope() int { return c.scope }

// Items returns the loaded voters in server order.
func (c *Controller[F]) Items() []model.Voter { return c.items }

// Total returns the server-reported total for the current filter.
func (c *Controller[F]) Total() int { return c.total }

// Page returns the current 1-based page cursor.
func (c *Controller[F]) Page() int { return c.page }

// HasMore reports whether the last page was full.
func (c *Controller[F]) HasMore() bool { return c.hasMore }

// Fetching reports whether a page query is in flight.
func (c *Controller[F]) Fetching() bool { return c.fetching }

// Filter returns the active filter.
func (c *Controller[F]) Filter() F { return c.filter }

// Search returns the committed search text.
func (c *Controller[F]) Search() string { return c.search }

// Err returns the error of the last failed load or mutation, or nil once
// a later one succeeds.
func (c *Controller[F]) Err() error { return c.lastErr }
