package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultStorageKey is the key the whole collection is stored under.
const DefaultStorageKey = "coi-dashboard-data"

var (
	ErrNoData      = errors.New("no stored coi data")
	ErrCorruptData = errors.New("stored coi data is corrupt")
)

// Persister loads and saves the full COI collection as one document.
type Persister interface {
	// Load returns ErrNoData when nothing is stored and an error wrapping ErrCorruptData
	// when the stored payload cannot be decoded.
	Load(ctx context.Context) ([]model.COI, error)
	Save(ctx context.Context, cois []model.COI) error
}

// KVPersister stores the collection as a JSON payload in the kv_entries table.
type KVPersister struct {
	db  *gorm.DB
	key string
}

func NewKVPersister(db *gorm.DB, key string) *KVPersister {
	if key == "" {
		key = DefaultStorageKey
	}
	return &KVPersister{db: db, key: key}
}

func (p *KVPersister) Load(ctx context.Context) ([]model.COI, error) {
	var entry model.KVEntry
	err := p.db.WithContext(ctx).Where("storage_key = ?", p.key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.key, err)
	}
	return DecodeCOIs(entry.Payload)
}

func (p *KVPersister) Save(ctx context.Context, cois []model.COI) error {
	payload, err := EncodeCOIs(cois)
	if err != nil {
		return err
	}
	entry := model.KVEntry{
		StorageKey: p.key,
		Payload:    datatypes.JSON(payload),
		UpdatedAt:  time.Now().UTC(),
	}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", p.key, err)
	}
	return nil
}

// EncodeCOIs serialises the collection. A nil slice encodes as an empty array.
func EncodeCOIs(cois []model.COI) ([]byte, error) {
	if cois == nil {
		cois = []model.COI{}
	}
	payload, err := json.Marshal(cois)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cois: %w", err)
	}
	return payload, nil
}

// DecodeCOIs parses a stored payload. Anything other than an array of well-formed
// records is reported as ErrCorruptData.
func DecodeCOIs(payload []byte) ([]model.COI, error) {
	var cois []model.COI
	if err := json.Unmarshal(payload, &cois); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if cois == nil {
		return nil, fmt.Errorf("%w: payload is not an array", ErrCorruptData)
	}
	seen := make(map[string]struct{}, len(cois))
	for i, c := range cois {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrCorruptData, i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCorruptData, c.ID)
		}
		seen[c.ID] = struct{}{}
		if !c.Status.Valid() || !c.ReminderStatus.Valid() {
			return nil, fmt.Errorf("%w: record %s has an unknown status", ErrCorruptData, c.ID)
		}
	}
	return cois, nil
}
