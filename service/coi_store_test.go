package services

import (
	"context"
	"errors"
	"testing"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewCOIStoreLoad(t *testing.T) {
	stored := makeCOIs(3)
	tests := []struct {
		name     string
		loadCOIs []model.COI
		loadErr  error
		wantSeed bool
	}{
		{name: "stored data is used as is", loadCOIs: stored},
		{name: "missing key falls back to seed", loadErr: ErrNoData, wantSeed: true},
		{name: "corrupt payload falls back to seed", loadErr: ErrCorruptData, wantSeed: true},
		{name: "read error falls back to seed", loadErr: errors.New("disk on fire"), wantSeed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(MockPersister)
			p.On("Load", mock.Anything).Return(tt.loadCOIs, tt.loadErr)
			if tt.wantSeed {
				p.On("Save", mock.Anything, SeedCOIs()).Return(nil)
			}

			store := NewCOIStore(context.Background(), p, WithLogger(quietLogger()))

			if tt.wantSeed {
				assert.Equal(t, SeedCOIs(), store.Snapshot())
			} else {
				assert.Equal(t, stored, store.Snapshot())
				p.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			}
			assert.Empty(t, store.Selection())
			p.AssertExpectations(t)
		})
	}
}

func TestNewCOIStoreSeedSaveFailureIsNotFatal(t *testing.T) {
	p := new(MockPersister)
	p.On("Load", mock.Anything).Return(nil, ErrNoData)
	p.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only"))

	store := NewCOIStore(context.Background(), p, WithLogger(quietLogger()))
	assert.Len(t, store.Snapshot(), len(SeedCOIs()))
}

func TestSeedCOIsAreValidAndStable(t *testing.T) {
	seed := SeedCOIs()
	require.NotEmpty(t, seed)
	seen := map[string]bool{}
	for _, c := range seed {
		assert.NoError(t, ValidateCOIInput(c.Input()), c.ID)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Equal(t, seed, SeedCOIs())
}

func TestAddPrependsWithDefaults(t *testing.T) {
	store, p := storeWith(makeCOIs(2))

	coi, err := store.Add(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, coi.ID)
	assert.Equal(t, model.StatusActive, coi.Status)
	assert.Equal(t, model.ReminderNotSent, coi.ReminderStatus)
	assert.Equal(t, "2025-03-05T00:00:00.000Z", coi.CreatedAt)

	all := store.Snapshot()
	require.Len(t, all, 3)
	assert.Equal(t, coi, all[0])
	assert.Equal(t, 1, p.saveCount())

	persisted, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all, persisted)
}

func TestAddKeepsExplicitStatuses(t *testing.T) {
	store, _ := storeWith(nil)
	in := validInput()
	in.Status = model.StatusNotProcessed
	in.ReminderStatus = model.ReminderNA

	coi, err := store.Add(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotProcessed, coi.Status)
	assert.Equal(t, model.ReminderNA, coi.ReminderStatus)
}

func TestAddAllowsDuplicateDataWithUniqueIDs(t *testing.T) {
	store, _ := storeWith(nil)
	a, err := store.Add(context.Background(), validInput())
	require.NoError(t, err)
	b, err := store.Add(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, store.Snapshot(), 2)
}

func TestAddRejectsEmptyTenantEmail(t *testing.T) {
	store, p := storeWith(makeCOIs(2))
	before := store.Snapshot()

	in := validInput()
	in.TenantEmail = ""
	_, err := store.Add(context.Background(), in)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Tenant email is required", ve.Fields["tenantEmail"])
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 0, p.saveCount())
}

func TestAddKeepsRecordWhenSaveFails(t *testing.T) {
	store, p := storeWith(nil)
	p.saveErr = errors.New("quota exceeded")

	coi, err := store.Add(context.Background(), validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist cois")
	assert.ErrorIs(t, err, p.saveErr)
	assert.Equal(t, []model.COI{coi}, store.Snapshot())
}

func TestUpdate(t *testing.T) {
	store, p := storeWith(makeCOIs(3))
	original, _ := store.Get("coi-2")

	name := "Renamed Tenant"
	status := model.StatusRejected
	got, found, err := store.Update(context.Background(), "coi-2", model.COIUpdate{TenantName: &name, Status: &status})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "Renamed Tenant", got.TenantName)
	assert.Equal(t, model.StatusRejected, got.Status)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.CreatedAt, got.CreatedAt)
	assert.Equal(t, original.Unit, got.Unit)

	stored, _ := store.Get("coi-2")
	assert.Equal(t, got, stored)
	assert.Equal(t, 1, p.saveCount())
}

func TestUpdateMissingIDIsANoop(t *testing.T) {
	store, p := storeWith(makeCOIs(2))
	before := store.Snapshot()

	name := "x"
	_, found, err := store.Update(context.Background(), "nope", model.COIUpdate{TenantName: &name})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 0, p.saveCount())
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	store, p := storeWith(makeCOIs(2))
	before := store.Snapshot()

	bad := "not-an-email"
	_, found, err := store.Update(context.Background(), "coi-1", model.COIUpdate{TenantEmail: &bad})
	assert.True(t, found)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid email format", ve.Fields["tenantEmail"])
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 0, p.saveCount())
}

func TestSetStatus(t *testing.T) {
	store, _ := storeWith(makeCOIs(1))
	got, found, err := store.SetStatus(context.Background(), "coi-1", model.StatusExpiringSoon)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.StatusExpiringSoon, got.Status)
}

func TestDeleteRemovesRecordAndSelection(t *testing.T) {
	store, p := storeWith(makeCOIs(3))
	store.ToggleSelect("coi-1")
	store.ToggleSelect("coi-2")

	require.NoError(t, store.Delete(context.Background(), "coi-2"))

	assert.Equal(t, []string{"coi-1", "coi-3"}, ids(store.Snapshot()))
	assert.Equal(t, []string{"coi-1"}, store.Selection())
	assert.Equal(t, 1, p.saveCount())

	// deleting again is a no-op
	require.NoError(t, store.Delete(context.Background(), "coi-2"))
	assert.Equal(t, 1, p.saveCount())
}

func TestToggleSelect(t *testing.T) {
	store, p := storeWith(makeCOIs(3))

	assert.True(t, store.ToggleSelect("coi-3"))
	assert.True(t, store.ToggleSelect("coi-1"))
	assert.Equal(t, []string{"coi-3", "coi-1"}, store.Selection())

	assert.False(t, store.ToggleSelect("coi-3"))
	assert.Equal(t, []string{"coi-1"}, store.Selection())

	assert.False(t, store.ToggleSelect("ghost"))
	assert.Equal(t, []string{"coi-1"}, store.Selection())

	// selection is session state and is not saved
	assert.Equal(t, 0, p.saveCount())
}

func TestSelectAllUsesFullSet(t *testing.T) {
	store, _ := storeWith(makeCOIs(4))
	store.SelectAll(true)
	assert.Equal(t, []string{"coi-1", "coi-2", "coi-3", "coi-4"}, store.Selection())

	store.SelectAll(false)
	assert.Empty(t, store.Selection())
}

func TestSendReminders(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("NotifyReminder", mock.Anything, mock.MatchedBy(func(c model.COI) bool { return c.ID == "coi-1" })).Return(nil)
	notifier.On("NotifyReminder", mock.Anything, mock.MatchedBy(func(c model.COI) bool { return c.ID == "coi-3" })).Return(errors.New("smtp down"))

	store, p := storeWith(makeCOIs(4), WithNotifier(notifier))
	store.SelectAll(true)

	n, err := store.SendReminders(context.Background(), []string{"coi-1", "coi-3", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, c := range store.Snapshot() {
		switch c.ID {
		case "coi-1", "coi-3":
			assert.Equal(t, model.ReminderSent30d, c.ReminderStatus, c.ID)
		default:
			assert.Equal(t, model.ReminderNotSent, c.ReminderStatus, c.ID)
		}
	}
	assert.Empty(t, store.Selection())
	assert.Equal(t, 1, p.saveCount())
	notifier.AssertNumberOfCalls(t, "NotifyReminder", 2)
}

func TestSendRemindersWithNoMatchesStillClearsSelection(t *testing.T) {
	store, p := storeWith(makeCOIs(2))
	store.ToggleSelect("coi-1")

	n, err := store.SendReminders(context.Background(), []string{"ghost"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.Selection())
	assert.Equal(t, 0, p.saveCount())
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	store, _ := storeWith(makeCOIs(2))
	snap := store.Snapshot()
	snap[0].TenantName = "mutated"

	sel := store.Selection()
	sel = append(sel, "coi-1")
	_ = sel

	fresh, _ := store.Get(snap[0].ID)
	assert.NotEqual(t, "mutated", fresh.TenantName)
	assert.Empty(t, store.Selection())
}

type recordingObserver struct {
	ops       []string
	selection []int
	reminders int
}

func (o *recordingObserver) CollectionChanged(op string, _ []model.COI) { o.ops = append(o.ops, op) }
func (o *recordingObserver) SelectionChanged(size int)                  { o.selection = append(o.selection, size) }
func (o *recordingObserver) RemindersSent(n int)                        { o.reminders += n }

func TestObserverSeesEveryMutation(t *testing.T) {
	obs := &recordingObserver{}
	store, _ := storeWith(makeCOIs(2), WithObserver(obs))
	ctx := context.Background()

	coi, err := store.Add(ctx, validInput())
	require.NoError(t, err)
	_, _, err = store.SetStatus(ctx, coi.ID, model.StatusExpired)
	require.NoError(t, err)
	store.ToggleSelect("coi-1")
	_, err = store.SendReminders(ctx, []string{"coi-1"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, coi.ID))

	assert.Equal(t, []string{OpLoad, OpAdd, OpUpdate, OpReminder, OpDelete}, obs.ops)
	assert.Equal(t, []int{0, 1, 0, 0}, obs.selection)
	assert.Equal(t, 1, obs.reminders)
}

func TestConcurrentAccess(t *testing.T) {
	store, _ := storeWith(makeCOIs(5))
	ctx := context.Background()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, _ = store.Add(ctx, validInput())
		}
	}()
	for i := 0; i < 50; i++ {
		store.SelectAll(i%2 == 0)
		_ = store.Snapshot()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not finish")
	}
	assert.Len(t, store.Snapshot(), 55)
}
