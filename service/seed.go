package services

import (
	"github.com/google/uuid"

	model "github.com/Itish41/COIDashboard/models"
)

// seedNamespace makes seed ids stable across restarts.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("coi-dashboard/seed"))

type seedRow struct {
	property, tenant, email, unit, coiName, expiry string
	status                                         model.COIStatus
	reminder                                       model.ReminderStatus
	createdAt                                      string
}

var seedRows = []seedRow{
	{"Maple Grove Apartments", "Sarah Johnson", "sarah.johnson@example.com", "A-101", "General Liability", "2026-03-15", model.StatusActive, model.ReminderNotSent, "2025-01-15T10:30:00.000Z"},
	{"Maple Grove Apartments", "Michael Chen", "michael.chen@example.com", "A-204", "Renters Insurance", "2025-11-30", model.StatusExpiringSoon, model.ReminderSent30d, "2025-01-14T09:15:00.000Z"},
	{"Riverside Commons", "Emily Davis", "emily.davis@example.com", "B-12", "Property Damage", "2025-06-01", model.StatusExpired, model.ReminderSent7d, "2025-01-13T14:45:00.000Z"},
	{"Riverside Commons", "James Wilson", "james.wilson@example.com", "B-07", "General Liability", "2026-08-20", model.StatusActive, model.ReminderNotSent, "2025-01-12T11:00:00.000Z"},
	{"Oakwood Plaza", "Olivia Martinez", "olivia.martinez@example.com", "Suite 300", "Commercial Liability", "2026-01-10", model.StatusNotProcessed, model.ReminderNA, "2025-01-11T16:20:00.000Z"},
	{"Oakwood Plaza", "Daniel Brown", "daniel.brown@example.com", "Suite 120", "Workers Compensation", "2025-12-05", model.StatusRejected, model.ReminderNotSent, "2025-01-10T08:05:00.000Z"},
	{"Sunset Towers", "Sophia Lee", "sophia.lee@example.com", "12C", "Renters Insurance", "2026-05-18", model.StatusActive, model.ReminderNotSent, "2025-01-09T13:40:00.000Z"},
	{"Sunset Towers", "William Taylor", "william.taylor@example.com", "8A", "Umbrella Policy", "2025-10-28", model.StatusExpiringSoon, model.ReminderSent15d, "2025-01-08T10:10:00.000Z"},
	{"Harbor View Lofts", "Ava Anderson", "ava.anderson@example.com", "L-5", "General Liability", "2026-02-14", model.StatusActive, model.ReminderNotSent, "2025-01-07T15:55:00.000Z"},
	{"Harbor View Lofts", "Liam Thomas", "liam.thomas@example.com", "L-9", "Property Damage", "2025-04-30", model.StatusExpired, model.ReminderSent7d, "2025-01-06T12:25:00.000Z"},
	{"Cedar Park Offices", "Isabella Moore", "isabella.moore@example.com", "Floor 2", "Commercial Liability", "2026-07-01", model.StatusRejected, model.ReminderNA, "2025-01-05T09:50:00.000Z"},
	{"Cedar Park Offices", "Noah Jackson", "noah.jackson@example.com", "Floor 4", "Workers Compensation", "2026-09-12", model.StatusActive, model.ReminderNotSent, "2025-01-04T17:30:00.000Z"},
}

// SeedCOIs returns the demo dataset used when storage is empty or unreadable.
// Each call returns a fresh slice.
func SeedCOIs() []model.COI {
	out := make([]model.COI, 0, len(seedRows))
	for i, r := range seedRows {
		out = append(out, model.COI{
			ID:             uuid.NewSHA1(seedNamespace, []byte{byte(i)}).String(),
			Property:       r.property,
			TenantName:     r.tenant,
			TenantEmail:    r.email,
			Unit:           r.unit,
			COIName:        r.coiName,
			ExpiryDate:     r.expiry,
			Status:         r.status,
			ReminderStatus: r.reminder,
			CreatedAt:      r.createdAt,
		})
	}
	return out
}
