package models

import (
	"encoding/json"
	"fmt"
)

// COIStatus is the approval state of a certificate.
type COIStatus string

const (
	StatusActive       COIStatus = "Active"
	StatusExpired      COIStatus = "Expired"
	StatusRejected     COIStatus = "Rejected"
	StatusExpiringSoon COIStatus = "Expiring Soon"
	StatusNotProcessed COIStatus = "Not Processed"
)

// AllStatuses lists every status in display order.
var AllStatuses = []COIStatus{
	StatusActive,
	StatusExpired,
	StatusRejected,
	StatusExpiringSoon,
	StatusNotProcessed,
}

// Valid reports whether s is one of the known statuses.
func (s COIStatus) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusRejected, StatusExpiringSoon, StatusNotProcessed:
		return true
	default:
		return false
	}
}

// UnmarshalJSON rejects values outside the closed set. An empty string decodes to the zero value.
func (s *COIStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	status := COIStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("unknown coi status %q", raw)
	}
	*s = status
	return nil
}

// ReminderStatus tracks whether a notification went out for an upcoming expiry.
type ReminderStatus string

const (
	ReminderNotSent ReminderStatus = "Not Sent"
	ReminderSent30d ReminderStatus = "Sent (30d)"
	ReminderSent15d ReminderStatus = "Sent (15d)"
	ReminderSent7d  ReminderStatus = "Sent (7d)"
	ReminderNA      ReminderStatus = "N/A"
)

// AllReminderStatuses lists every reminder status in display order.
var AllReminderStatuses = []ReminderStatus{
	ReminderNotSent,
	ReminderSent30d,
	ReminderSent15d,
	ReminderSent7d,
	ReminderNA,
}

func (r ReminderStatus) Valid() bool {
	switch r {
	case ReminderNotSent, ReminderSent30d, ReminderSent15d, ReminderSent7d, ReminderNA:
		return true
	default:
		return false
	}
}

func (r *ReminderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*r = ""
		return nil
	}
	status := ReminderStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("unknown reminder status %q", raw)
	}
	*r = status
	return nil
}

// COI is one tracked Certificate of Insurance.
// JSON names are the persisted names and must not change.
type COI struct {
	// ID is an opaque uuid assigned at creation. It never changes.
	ID string `json:"id"`

	Property    string `json:"property"`
	TenantName  string `json:"tenantName"`
	TenantEmail string `json:"tenantEmail"`
	Unit        string `json:"unit"`
	COIName     string `json:"coiName"`

	// ExpiryDate is an ISO 8601 calendar date (YYYY-MM-DD).
	ExpiryDate string `json:"expiryDate"`

	Status         COIStatus      `json:"status"`
	ReminderStatus ReminderStatus `json:"reminderStatus"`

	// CreatedAt is an RFC 3339 UTC timestamp stamped when the record is added.
	CreatedAt string `json:"createdAt"`
}

// COIInput carries the caller-supplied fields of a new COI.
// Empty Status and ReminderStatus fall back to Active and Not Sent before validation.
type COIInput struct {
	Property       string         `json:"property" validate:"notblank"`
	TenantName     string         `json:"tenantName" validate:"notblank"`
	TenantEmail    string         `json:"tenantEmail" validate:"notblank,coiemail"`
	Unit           string         `json:"unit" validate:"notblank"`
	COIName        string         `json:"coiName" validate:"notblank"`
	ExpiryDate     string         `json:"expiryDate" validate:"notblank,isodate"`
	Status         COIStatus      `json:"status" validate:"coistatus"`
	ReminderStatus ReminderStatus `json:"reminderStatus" validate:"reminderstatus"`
}

// COIUpdate is a partial edit. Nil fields are left untouched.
type COIUpdate struct {
	Property       *string         `json:"property,omitempty"`
	TenantName     *string         `json:"tenantName,omitempty"`
	TenantEmail    *string         `json:"tenantEmail,omitempty"`
	Unit           *string         `json:"unit,omitempty"`
	COIName        *string         `json:"coiName,omitempty"`
	ExpiryDate     *string         `json:"expiryDate,omitempty"`
	Status         *COIStatus      `json:"status,omitempty"`
	ReminderStatus *ReminderStatus `json:"reminderStatus,omitempty"`
}

// Apply merges the non-nil fields of u into c. ID and CreatedAt are never touched.
func (u COIUpdate) Apply(c COI) COI {
	if u.Property != nil {
		c.Property = *u.Property
	}
	if u.TenantName != nil {
		c.TenantName = *u.TenantName
	}
	if u.TenantEmail != nil {
		c.TenantEmail = *u.TenantEmail
	}
	if u.Unit != nil {
		c.Unit = *u.Unit
	}
	if u.COIName != nil {
		c.COIName = *u.COIName
	}
	if u.ExpiryDate != nil {
		c.ExpiryDate = *u.ExpiryDate
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.ReminderStatus != nil {
		c.ReminderStatus = *u.ReminderStatus
	}
	return c
}

// Input returns the editable fields of c, used to re-validate a merged record.
func (c COI) Input() COIInput {
	return COIInput{
		Property:       c.Property,
		TenantName:     c.TenantName,
		TenantEmail:    c.TenantEmail,
		Unit:           c.Unit,
		COIName:        c.COIName,
		ExpiryDate:     c.ExpiryDate,
		Status:         c.Status,
		ReminderStatus: c.ReminderStatus,
	}
}
