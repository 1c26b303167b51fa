package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const createdAtLayout = "2006-01-02T15:04:05.000Z"

// Store operations reported to a StoreObserver.
const (
	OpLoad     = "load"
	OpAdd      = "add"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpReminder = "reminder"
)

// StoreObserver is told about every change to the store, e.g. to refresh metrics.
type StoreObserver interface {
	CollectionChanged(op string, cois []model.COI)
	SelectionChanged(size int)
	RemindersSent(n int)
}

type noopObserver struct{}

func (noopObserver) CollectionChanged(string, []model.COI) {}
func (noopObserver) SelectionChanged(int)                  {}
func (noopObserver) RemindersSent(int)                     {}

// COIStore owns the COI collection and the current selection.
// Every change to the collection is saved through the Persister before the call returns.
type COIStore struct {
	mu       sync.RWMutex
	cois     []model.COI
	selected []string

	persister Persister
	notifier  ReminderNotifier
	observer  StoreObserver
	log       *logrus.Entry
	now       func() time.Time
}

type StoreOption func(*COIStore)

func WithLogger(log *logrus.Entry) StoreOption {
	return func(s *COIStore) { s.log = log }
}

func WithNotifier(n ReminderNotifier) StoreOption {
	return func(s *COIStore) { s.notifier = n }
}

func WithObserver(o StoreObserver) StoreOption {
	return func(s *COIStore) { s.observer = o }
}

// WithClock overrides the time source used for createdAt stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *COIStore) { s.now = now }
}

// NewCOIStore loads the collection once. Missing or unreadable data falls back to the
// seed dataset, which is saved immediately.
func NewCOIStore(ctx context.Context, persister Persister, opts ...StoreOption) *COIStore {
	s := &COIStore{
		selected:  []string{},
		persister: persister,
		observer:  noopObserver{},
		log:       logrus.NewEntry(logrus.StandardLogger()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.log)
	}

	cois, err := persister.Load(ctx)
	switch {
	case err == nil:
		s.cois = cois
		s.log.Infof("[NewCOIStore] loaded %d cois", len(cois))
	case errors.Is(err, ErrNoData):
		s.log.Info("[NewCOIStore] no stored cois, using seed data")
		s.seed(ctx)
	default:
		s.log.Warnf("[NewCOIStore] failed to load cois, using seed data: %v", err)
		s.seed(ctx)
	}
	s.observer.CollectionChanged(OpLoad, s.snapshotLocked())
	s.observer.SelectionChanged(0)
	return s
}

func (s *COIStore) seed(ctx context.Context) {
	s.cois = SeedCOIs()
	if err := s.persister.Save(ctx, s.cois); err != nil {
		s.log.Warnf("[NewCOIStore] failed to save seed data: %v", err)
	}
}

// Snapshot returns a copy of the full collection, newest first.
func (s *COIStore) Snapshot() []model.COI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *COIStore) snapshotLocked() []model.COI {
	return append([]model.COI{}, s.cois...)
}

// Get returns the record with id.
func (s *COIStore) Get(id string) (model.COI, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.cois[i], true
	}
	return model.COI{}, false
}

// Selection returns the selected ids in selection order.
func (s *COIStore) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.selected...)
}

// Add validates in, stamps id and createdAt and puts the record first.
// On a validation error the store is unchanged.
func (s *COIStore) Add(ctx context.Context, in model.COIInput) (model.COI, error) {
	in = withDefaults(in)
	if err := ValidateCOIInput(in); err != nil {
		return model.COI{}, err
	}
	coi := model.COI{
		ID:             uuid.NewString(),
		Property:       in.Property,
		TenantName:     in.TenantName,
		TenantEmail:    in.TenantEmail,
		Unit:           in.Unit,
		COIName:        in.COIName,
		ExpiryDate:     in.ExpiryDate,
		Status:         in.Status,
		ReminderStatus: in.ReminderStatus,
		CreatedAt:      s.now().UTC().Format(createdAtLayout),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cois = append([]model.COI{coi}, s.cois...)
	s.log.Infof("[Add] added coi %s for %s", coi.ID, coi.TenantName)
	return coi, s.persistLocked(ctx, OpAdd)
}

// Update merges the non-nil fields of upd into the record with id and re-validates it.
// found is false when no record has id; nothing changes in that case.
func (s *COIStore) Update(ctx context.Context, id string, upd model.COIUpdate) (coi model.COI, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.log.Debugf("[Update] coi %s not found", id)
		return model.COI{}, false, nil
	}
	merged := upd.Apply(s.cois[i])
	if err := ValidateCOIInput(merged.Input()); err != nil {
		return model.COI{}, true, err
	}
	s.cois[i] = merged
	s.log.Infof("[Update] updated coi %s", id)
	return merged, true, s.persistLocked(ctx, OpUpdate)
}

// SetStatus changes only the approval status of one record.
func (s *COIStore) SetStatus(ctx context.Context, id string, status model.COIStatus) (model.COI, bool, error) {
	return s.Update(ctx, id, model.COIUpdate{Status: &status})
}

// Delete removes the record and drops it from the selection. Unknown ids are a no-op.
func (s *COIStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.cois = append(s.cois[:i:i], s.cois[i+1:]...)
	s.selected = removeID(s.selected, id)
	s.observer.SelectionChanged(len(s.selected))
	s.log.Infof("[Delete] deleted coi %s", id)
	return s.persistLocked(ctx, OpDelete)
}

// ToggleSelect flips the selection of id and reports whether it is now selected.
// Ids not in the store are ignored.
func (s *COIStore) ToggleSelect(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return false
	}
	defer func() { s.observer.SelectionChanged(len(s.selected)) }()
	for _, sel := range s.selected {
		if sel == id {
			s.selected = removeID(s.selected, id)
			return false
		}
	}
	s.selected = append(s.selected, id)
	return true
}

// SelectAll selects every record in the store, not just the filtered view, or clears the selection.
func (s *COIStore) SelectAll(selectAll bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = []string{}
	if selectAll {
		for _, c := range s.cois {
			s.selected = append(s.selected, c.ID)
		}
	}
	s.observer.SelectionChanged(len(s.selected))
}

// SendReminders marks every present id as reminded at 30 days and clears the selection.
// Absent ids are ignored. Notifications are best-effort and never fail the call.
func (s *COIStore) SendReminders(ctx context.Context, ids []string) (int, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	reminded := make([]model.COI, 0, len(want))
	for i := range s.cois {
		if _, ok := want[s.cois[i].ID]; ok {
			s.cois[i].ReminderStatus = model.ReminderSent30d
			reminded = append(reminded, s.cois[i])
		}
	}
	s.selected = []string{}
	s.observer.SelectionChanged(0)

	var err error
	if len(reminded) > 0 {
		err = s.persistLocked(ctx, OpReminder)
		s.observer.RemindersSent(len(reminded))
	}
	s.mu.Unlock()

	s.log.Infof("[SendReminders] %d of %d requested cois reminded", len(reminded), len(ids))
	for _, c := range reminded {
		if nerr := s.notifier.NotifyReminder(ctx, c); nerr != nil {
			s.log.Warnf("[SendReminders] failed to notify %s for coi %s: %v", c.TenantEmail, c.ID, nerr)
		}
	}
	return len(reminded), err
}

// persistLocked saves the collection. The in-memory change is kept even when saving fails.
func (s *COIStore) persistLocked(ctx context.Context, op string) error {
	snapshot := s.snapshotLocked()
	s.observer.CollectionChanged(op, snapshot)
	if err := s.persister.Save(ctx, snapshot); err != nil {
		s.log.Errorf("[%s] failed to persist cois: %v", op, err)
		return fmt.Errorf("failed to persist cois: %w", err)
	}
	return nil
}

func (s *COIStore) indexOf(id string) int {
	for i, c := range s.cois {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
