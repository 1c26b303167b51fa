package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	model "github.com/Itish41/COIDashboard/models"
)

var (
	ErrInvalidSort     = errors.New("invalid sort column or direction")
	ErrInvalidPageSize = errors.New("page size must be one of 10, 25, 50, 100")
	ErrPageOutOfRange  = errors.New("page out of range")
)

// PageSizeOptions are the rows-per-page choices offered by the table.
var PageSizeOptions = []int{10, 25, 50, 100}

const DefaultPageSize = 10

// Stats are the dashboard summary counters over the full record set.
type Stats struct {
	Total        int `json:"total"`
	Accepted     int `json:"accepted"`
	Rejected     int `json:"rejected"`
	ExpiringSoon int `json:"expiringSoon"`
}

// FilterCOIs keeps the records matching every active predicate of f, in input order.
func FilterCOIs(records []model.COI, f model.COIFilters, now time.Time) []model.COI {
	properties := make(map[string]struct{}, len(f.Properties))
	for _, p := range f.Properties {
		properties[p] = struct{}{}
	}
	statuses := make(map[model.COIStatus]struct{}, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses[s] = struct{}{}
	}
	rangeDays, bounded := f.ExpiryRange.Days()
	search := strings.TrimSpace(f.SearchQuery) != ""
	query := strings.ToLower(f.SearchQuery)

	out := make([]model.COI, 0, len(records))
	for _, c := range records {
		if len(properties) > 0 {
			if _, ok := properties[c.Property]; !ok {
				continue
			}
		}
		if len(statuses) > 0 {
			if _, ok := statuses[c.Status]; !ok {
				continue
			}
		}
		if bounded && !withinDays(c.ExpiryDate, now, rangeDays) {
			continue
		}
		if search && !matchesSearch(c, query) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchesSearch expects an already lowercased query. Surrounding spaces are part of the match.
func matchesSearch(c model.COI, query string) bool {
	for _, field := range []string{c.Property, c.TenantName, c.Unit, c.COIName} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// SortCOIs returns a stably sorted copy ordered case-insensitively by column.
// Equal keys keep their input order in both directions.
func SortCOIs(records []model.COI, column model.SortColumn, direction model.SortDirection) ([]model.COI, error) {
	if !column.Valid() || !direction.Valid() {
		return nil, ErrInvalidSort
	}
	lowered := make([]string, len(records))
	idx := make([]int, len(records))
	for i, c := range records {
		k, _ := column.Key(c)
		lowered[i] = strings.ToLower(k)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if direction == model.SortDesc {
			return lowered[idx[b]] < lowered[idx[a]]
		}
		return lowered[idx[a]] < lowered[idx[b]]
	})
	sorted := make([]model.COI, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	return sorted, nil
}

// TotalPages is ceil(n/pageSize) and never less than 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Paginate returns the rows of the 1-based page. A page past the end yields an empty slice.
func Paginate(records []model.COI, pageSize, page int) []model.COI {
	if pageSize <= 0 || page < 1 {
		return []model.COI{}
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []model.COI{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return append([]model.COI{}, records[start:end]...)
}

// ValidPageSize reports whether n is one of PageSizeOptions.
func ValidPageSize(n int) bool {
	for _, opt := range PageSizeOptions {
		if n == opt {
			return true
		}
	}
	return false
}

// ComputeStats counts over the full unfiltered set.
func ComputeStats(records []model.COI, now time.Time) Stats {
	stats := Stats{Total: len(records)}
	for _, c := range records {
		switch c.Status {
		case model.StatusActive:
			stats.Accepted++
		case model.StatusRejected:
			stats.Rejected++
		case model.StatusExpired, model.StatusExpiringSoon, model.StatusNotProcessed:
		}
		if IsExpiringSoon(c.ExpiryDate, now) {
			stats.ExpiringSoon++
		}
	}
	return stats
}

// UniqueProperties returns the sorted distinct property names, used for filter options.
func UniqueProperties(records []model.COI) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0)
	for _, c := range records {
		if _, ok := seen[c.Property]; ok {
			continue
		}
		seen[c.Property] = struct{}{}
		out = append(out, c.Property)
	}
	sort.Strings(out)
	return out
}
