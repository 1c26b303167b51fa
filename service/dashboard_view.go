package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	model "github.com/Itish41/COIDashboard/models"
)

var ErrInvalidFilters = errors.New("invalid filters")

// DashboardSnapshot is everything the table needs to render one page.
type DashboardSnapshot struct {
	Rows            []model.COI       `json:"rows"`
	Page            int               `json:"page"`
	PageSize        int               `json:"pageSize"`
	TotalPages      int               `json:"totalPages"`
	FilteredCount   int               `json:"filteredCount"`
	Sort            model.SortConfig  `json:"sort"`
	Filters         model.COIFilters  `json:"filters"`
	PendingFilters  *model.COIFilters `json:"pendingFilters,omitempty"`
	Stats           Stats             `json:"stats"`
	Properties      []string          `json:"properties"`
	Selected        []string          `json:"selected"`
	PageSizeOptions []int             `json:"pageSizeOptions"`
}

// DashboardView holds the table configuration over a COIStore: applied filters,
// sort, page and page size. Filter changes are debounced; every read re-derives
// rows from the current store contents.
type DashboardView struct {
	mu        sync.Mutex
	store     *COIStore
	debouncer *Debouncer
	now       func() time.Time

	filters  model.COIFilters
	pending  *model.COIFilters
	sort     model.SortConfig
	page     int
	pageSize int
}

func NewDashboardView(store *COIStore, debounce time.Duration, pageSize int) (*DashboardView, error) {
	if !ValidPageSize(pageSize) {
		return nil, ErrInvalidPageSize
	}
	return &DashboardView{
		store:     store,
		debouncer: NewDebouncer(debounce),
		now:       time.Now,
		filters:   model.DefaultFilters(),
		sort:      model.DefaultSort(),
		page:      1,
		pageSize:  pageSize,
	}, nil
}

// SetFilters stages f and applies it once the debounce window passes without another call.
func (v *DashboardView) SetFilters(f model.COIFilters) error {
	f, err := normalizeFilters(f)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.pending = &f
	v.mu.Unlock()
	v.debouncer.Schedule(v.applyPending)
	return nil
}

// FlushFilters applies staged filters now instead of waiting for the debounce window.
func (v *DashboardView) FlushFilters() {
	v.debouncer.Cancel()
	v.applyPending()
}

func (v *DashboardView) applyPending() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		return
	}
	v.filters = *v.pending
	v.pending = nil
	v.page = 1
}

// Filters returns the applied filters.
func (v *DashboardView) Filters() model.COIFilters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Clone()
}

// ToggleSort flips the direction when column is already active, otherwise sorts column ascending.
func (v *DashboardView) ToggleSort(column model.SortColumn) (model.SortConfig, error) {
	if !column.Valid() {
		return model.SortConfig{}, ErrInvalidSort
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sort.Column == column {
		if v.sort.Direction == model.SortAsc {
			v.sort.Direction = model.SortDesc
		} else {
			v.sort.Direction = model.SortAsc
		}
	} else {
		v.sort = model.SortConfig{Column: column, Direction: model.SortAsc}
	}
	return v.sort, nil
}

// SetPage jumps to page, which must be within 1..TotalPages of the filtered set.
func (v *DashboardView) SetPage(page int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	total := TotalPages(len(FilterCOIs(v.store.Snapshot(), v.filters, v.now())), v.pageSize)
	if page < 1 || page > total {
		return fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, page, total)
	}
	v.page = page
	return nil
}

// SetPageSize changes the rows per page and goes back to the first page.
func (v *DashboardView) SetPageSize(size int) error {
	if !ValidPageSize(size) {
		return ErrInvalidPageSize
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pageSize = size
	v.page = 1
	return nil
}

// Snapshot runs filter, sort and paginate over the current store contents.
// A page left beyond the end by deletions is reset to page 1.
func (v *DashboardView) Snapshot() DashboardSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	all := v.store.Snapshot()
	filtered := FilterCOIs(all, v.filters, now)
	sorted, err := SortCOIs(filtered, v.sort.Column, v.sort.Direction)
	if err != nil {
		// sort is only ever set through ToggleSort, so it is always valid
		sorted = filtered
	}
	total := TotalPages(len(sorted), v.pageSize)
	if v.page > total {
		v.page = 1
	}

	snap := DashboardSnapshot{
		Rows:            Paginate(sorted, v.pageSize, v.page),
		Page:            v.page,
		PageSize:        v.pageSize,
		TotalPages:      total,
		FilteredCount:   len(sorted),
		Sort:            v.sort,
		Filters:         v.filters.Clone(),
		Stats:           ComputeStats(all, now),
		Properties:      UniqueProperties(all),
		Selected:        v.store.Selection(),
		PageSizeOptions: append([]int{}, PageSizeOptions...),
	}
	if v.pending != nil {
		p := v.pending.Clone()
		snap.PendingFilters = &p
	}
	return snap
}

// Close drops any pending filter change.
func (v *DashboardView) Close() {
	v.debouncer.Cancel()
}

func normalizeFilters(f model.COIFilters) (model.COIFilters, error) {
	if f.ExpiryRange == "" {
		f.ExpiryRange = model.ExpiryAll
	}
	if !f.ExpiryRange.Valid() {
		return model.COIFilters{}, fmt.Errorf("%w: unknown expiry range %q", ErrInvalidFilters, f.ExpiryRange)
	}
	for _, s := range f.Statuses {
		if !s.Valid() {
			return model.COIFilters{}, fmt.Errorf("%w: unknown status %q", ErrInvalidFilters, s)
		}
	}
	return f.Clone(), nil
}
