package client

import (
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is how long search input must stay unchanged before it
// settles into the query.
const DefaultDebounce = 300 * time.Millisecond

// DefaultPageSize is the page size requested by QueryState.
const DefaultPageSize = 10

// scheduleFunc runs f after d and returns a function that cancels it.
type scheduleFunc func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// QueryState mirrors the list filters, sort and page on the client side.
// Search input is debounced; any change to the settled term, role, status or
// sort resets the page to 1. Every effective change is reported to the
// onChange callback with the parameters to fetch next.
type QueryState struct {
	mu       sync.Mutex
	onChange func(Params)
	schedule scheduleFunc
	delay    time.Duration
	pageSize int

	input  string
	term   string
	role   string
	status string
	sort   string
	order  string
	page   int
	total  int
	cancel func() bool
}

// StateOption configures a QueryState.
type StateOption func(*QueryState)

// WithDebounce sets the search quiescence delay.
func WithDebounce(d time.Duration) StateOption {
	return func(s *QueryState) { s.delay = d }
}

// WithPageSize sets the page size; values below 1 are ignored.
func WithPageSize(n int) StateOption {
	return func(s *QueryState) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func withScheduler(f scheduleFunc) StateOption {
	return func(s *QueryState) { s.schedule = f }
}

// NewQueryState returns state on page 1 with no filters. onChange may be nil.
func NewQueryState(onChange func(Params), opts ...StateOption) *QueryState {
	s := &QueryState{
		onChange: onChange,
		schedule: afterFunc,
		delay:    DefaultDebounce,
		pageSize: DefaultPageSize,
		order:    "asc",
		page:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the parameters for the current state.
func (s *QueryState) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paramsLocked()
}

func (s *QueryState) paramsLocked() Params {
	p := Params{
		Page:     s.page,
		Limit:    s.pageSize,
		Q:        s.term,
		Role:     s.role,
		IsActive: s.status,
	}
	if s.sort != "" {
		p.Sort = s.sort
		p.Order = s.order
	}
	return p
}

// update applies fn under the lock and notifies when fn reports a change.
func (s *QueryState) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	params := s.paramsLocked()
	cb := s.onChange
	s.mu.Unlock()
	if changed && cb != nil {
		cb(params)
	}
}

// SetSearch buffers raw search input. The trimmed value settles once no
// further input arrives within the debounce delay.
func (s *QueryState) SetSearch(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = input
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = s.schedule(s.delay, s.settle)
}

// Flush settles pending search input immediately.
func (s *QueryState) Flush() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.settle()
}

func (s *QueryState) settle() {
	s.update(func() bool {
		s.cancel = nil
		term := strings.TrimSpace(s.input)
		if term == s.term {
			return false
		}
		s.term = term
		s.page = 1
		return true
	})
}

// Close cancels pending search input.
func (s *QueryState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetRole filters by role; "" clears the filter.
func (s *QueryState) SetRole(role string) {
	s.update(func() bool { return s.resetOnChange(&s.role, role) })
}

// SetStatus filters by "true" or "false"; "" clears the filter.
func (s *QueryState) SetStatus(status string) {
	s.update(func() bool { return s.resetOnChange(&s.status, status) })
}

func (s *QueryState) resetOnChange(field *string, value string) bool {
	if *field == value {
		return false
	}
	*field = value
	s.page = 1
	return true
}

// ToggleSort flips the order when field is already the sort field, and
// otherwise sorts by field ascending.
func (s *QueryState) ToggleSort(field string) {
	s.update(func() bool {
		if s.sort == field {
			if s.order == "asc" {
				s.order = "desc"
			} else {
				s.order = "asc"
			}
		} else {
			s.sort = field
			s.order = "asc"
		}
		s.page = 1
		return true
	})
}

// SetTotal records the total from the latest list reply.
func (s *QueryState) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if total < 0 {
		total = 0
	}
	s.total = total
}

// TotalPages is max(1, ceil(total/pageSize)).
func (s *QueryState) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPagesLocked()
}

func (s *QueryState) totalPagesLocked() int {
	pages := (s.total + s.pageSize - 1) / s.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Page returns the current page number.
func (s *QueryState) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Term returns the settled search term.
func (s *QueryState) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// SetPage moves to page, clamped to [1, TotalPages].
func (s *QueryState) SetPage(page int) {
	s.update(func() bool {
		if last := s.totalPagesLocked(); page > last {
			page = last
		}
		if page < 1 {
			page = 1
		}
		if page == s.page {
			return false
		}
		s.page = page
		return true
	})
}

func (s *QueryState) Next() { s.SetPage(s.Page() + 1) }

func (s *QueryState) Prev() { s.SetPage(s.Page() - 1) }

// AfterDelete refreshes after a row was deleted from a page that showed
// rowsOnPage rows. Removing the last row of a page beyond the first steps
// back one page.
func (s *QueryState) AfterDelete(rowsOnPage int) {
	s.update(func() bool {
		if rowsOnPage == 1 && s.page > 1 {
			s.page--
		}
		return true
	})
}
