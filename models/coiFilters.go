package models

// ExpiryRange is a bounded "upcoming N days" window. Past-due certificates fall outside every bounded range.
type ExpiryRange string

const (
	ExpiryAll    ExpiryRange = "all"
	Expiry30Days ExpiryRange = "30days"
	Expiry60Days ExpiryRange = "60days"
	Expiry90Days ExpiryRange = "90days"
)

// Days returns the window length and false for ExpiryAll or unknown ranges.
func (r ExpiryRange) Days() (int, bool) {
	switch r {
	case Expiry30Days:
		return 30, true
	case Expiry60Days:
		return 60, true
	case Expiry90Days:
		return 90, true
	case ExpiryAll:
		return 0, false
	default:
		return 0, false
	}
}

func (r ExpiryRange) Valid() bool {
	switch r {
	case ExpiryAll, Expiry30Days, Expiry60Days, Expiry90Days:
		return true
	default:
		return false
	}
}

// COIFilters is the filter configuration of the dashboard table.
// Empty slices and an empty query disable the matching predicate.
type COIFilters struct {
	Properties  []string    `json:"properties"`
	Statuses    []COIStatus `json:"statuses"`
	ExpiryRange ExpiryRange `json:"expiryRange"`
	SearchQuery string      `json:"searchQuery"`
}

// DefaultFilters returns a configuration that passes every record.
func DefaultFilters() COIFilters {
	return COIFilters{
		Properties:  []string{},
		Statuses:    []COIStatus{},
		ExpiryRange: ExpiryAll,
		SearchQuery: "",
	}
}

// Clone returns a deep copy so callers cannot alias the slices.
func (f COIFilters) Clone() COIFilters {
	out := f
	out.Properties = append([]string{}, f.Properties...)
	out.Statuses = append([]COIStatus{}, f.Statuses...)
	return out
}
