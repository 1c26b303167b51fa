package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// FixedTime is used to pin the clock in tests.
var FixedTime = time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// MockPersister is a testify mock of Persister.
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Load(ctx context.Context) ([]model.COI, error) {
	args := m.Called(ctx)
	cois, _ := args.Get(0).([]model.COI)
	return cois, args.Error(1)
}

func (m *MockPersister) Save(ctx context.Context, cois []model.COI) error {
	args := m.Called(ctx, cois)
	return args.Error(0)
}

// memPersister keeps the encoded payload in memory, like a single key-value slot.
type memPersister struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	saveErr error
}

func (p *memPersister) Load(context.Context) ([]model.COI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payload == nil {
		return nil, ErrNoData
	}
	return DecodeCOIs(p.payload)
}

func (p *memPersister) Save(_ context.Context, cois []model.COI) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	payload, err := EncodeCOIs(cois)
	if err != nil {
		return err
	}
	p.payload = payload
	return nil
}

func (p *memPersister) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// MockNotifier is a testify mock of ReminderNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyReminder(ctx context.Context, coi model.COI) error {
	return m.Called(ctx, coi).Error(0)
}

func validInput() model.COIInput {
	return model.COIInput{
		Property:    "Maple Grove Apartments",
		TenantName:  "Jane Doe",
		TenantEmail: "jane@example.com",
		Unit:        "A-1",
		COIName:     "General Liability",
		ExpiryDate:  "2025-12-31",
	}
}

// makeCOIs builds n records with ids coi-1..coi-n.
func makeCOIs(n int) []model.COI {
	out := make([]model.COI, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.COI{
			ID:             fmt.Sprintf("coi-%d", i),
			Property:       "Property",
			TenantName:     fmt.Sprintf("Tenant %02d", i),
			TenantEmail:    fmt.Sprintf("tenant%d@example.com", i),
			Unit:           fmt.Sprintf("U%d", i),
			COIName:        "General Liability",
			ExpiryDate:     "2025-12-31",
			Status:         model.StatusActive,
			ReminderStatus: model.ReminderNotSent,
			CreatedAt:      FixedTime.Add(time.Duration(i) * time.Minute).Format(createdAtLayout),
		})
	}
	return out
}

// storeWith returns a store preloaded with cois over an in-memory persister.
func storeWith(cois []model.COI, opts ...StoreOption) (*COIStore, *memPersister) {
	p := &memPersister{}
	payload, err := EncodeCOIs(cois)
	if err != nil {
		panic(err)
	}
	p.payload = payload
	opts = append([]StoreOption{WithLogger(quietLogger()), WithClock(func() time.Time { return FixedTime })}, opts...)
	return NewCOIStore(context.Background(), p, opts...), p
}

func ids(cois []model.COI) []string {
	out := make([]string, 0, len(cois))
	for _, c := range cois {
		out = append(out, c.ID)
	}
	return out
}
