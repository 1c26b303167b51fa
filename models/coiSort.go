package models

// SortColumn names a sortable COI field by its json name.
type SortColumn string

const (
	SortProperty       SortColumn = "property"
	SortTenantName     SortColumn = "tenantName"
	SortTenantEmail    SortColumn = "tenantEmail"
	SortUnit           SortColumn = "unit"
	SortCOIName        SortColumn = "coiName"
	SortExpiryDate     SortColumn = "expiryDate"
	SortStatus         SortColumn = "status"
	SortReminderStatus SortColumn = "reminderStatus"
	SortCreatedAt      SortColumn = "createdAt"
)

// Key returns the value of c compared when sorting by column s.
// ok is false for an unknown column.
func (s SortColumn) Key(c COI) (key string, ok bool) {
	switch s {
	case SortProperty:
		return c.Property, true
	case SortTenantName:
		return c.TenantName, true
	case SortTenantEmail:
		return c.TenantEmail, true
	case SortUnit:
		return c.Unit, true
	case SortCOIName:
		return c.COIName, true
	case SortExpiryDate:
		return c.ExpiryDate, true
	case SortStatus:
		return string(c.Status), true
	case SortReminderStatus:
		return string(c.ReminderStatus), true
	case SortCreatedAt:
		return c.CreatedAt, true
	default:
		return "", false
	}
}

func (s SortColumn) Valid() bool {
	_, ok := s.Key(COI{})
	return ok
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// SortConfig is the active column and direction of the table.
type SortConfig struct {
	Column    SortColumn    `json:"column"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort shows the newest records first.
func DefaultSort() SortConfig {
	return SortConfig{Column: SortCreatedAt, Direction: SortDesc}
}
