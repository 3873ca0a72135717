package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aether-planner/internal/model"
)

// Storage keys, one independent JSON document each.
const (
	keyTasks     = "aether_tasks"
	keyConfig    = "aether_config"
	keyCarryOver = "aether_carryover"
	keyHistory   = "aether_history"
)

const (
	DefaultDayStart = "08:00"
	DefaultDayEnd   = "22:00"
)

// StateRepository persists the planner snapshot in a key-value table.
// Missing or malformed documents are replaced with schema defaults, never
// surfaced as errors to the caller.
type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// DefaultConfig returns the day configuration used when nothing is stored yet.
func DefaultConfig(now time.Time) model.DayConfig {
	return model.DayConfig{
		DayStart:         DefaultDayStart,
		DayEnd:           DefaultDayEnd,
		AlarmDate:        now.Format("2006-01-02"),
		SelectedRingtone: model.RingtoneClassic,
	}
}

// LoadAll hydrates the full snapshot, falling back to defaults per key.
func (r *StateRepository) LoadAll(ctx context.Context) (model.Snapshot, error) {
	snap := model.Snapshot{
		Tasks:     []model.Task{},
		Config:    DefaultConfig(time.Now()),
		CarryOver: []model.Task{},
		History:   []model.DayStats{},
	}

	if raw, ok, err := r.load(ctx, keyTasks); err != nil {
		return snap, err
	} else if ok {
		var tasks []model.Task
		if decodeOr(keyTasks, raw, &tasks) && tasks != nil {
			snap.Tasks = tasks
		}
	}

	if raw, ok, err := r.load(ctx, keyConfig); err != nil {
		return snap, err
	} else if ok {
		var cfg model.DayConfig
		if decodeOr(keyConfig, raw, &cfg) {
			if cfg.AlarmDate == "" {
				cfg.AlarmDate = snap.Config.AlarmDate
			}
			if !cfg.SelectedRingtone.IsValid() {
				cfg.SelectedRingtone = model.RingtoneClassic
			}
			if cfg.DayStart == "" {
				cfg.DayStart = DefaultDayStart
			}
			if cfg.DayEnd == "" {
				cfg.DayEnd = DefaultDayEnd
			}
			snap.Config = cfg
		}
	}

	if raw, ok, err := r.load(ctx, keyCarryOver); err != nil {
		return snap, err
	} else if ok {
		var carry []model.Task
		if decodeOr(keyCarryOver, raw, &carry) && carry != nil {
			snap.CarryOver = carry
		}
	}

	if raw, ok, err := r.load(ctx, keyHistory); err != nil {
		return snap, err
	} else if ok {
		var history []model.DayStats
		if decodeOr(keyHistory, raw, &history) && history != nil {
			snap.History = history
		}
	}

	return snap, nil
}

// SaveAll rewrites all four documents from the snapshot.
func (r *StateRepository) SaveAll(ctx context.Context, snap model.Snapshot) error {
	rows := make([]StoredValue, 0, 4)
	now := time.Now()
	for _, doc := range []struct {
		key string
		val any
	}{
		{keyTasks, snap.Tasks},
		{keyConfig, snap.Config},
		{keyCarryOver, snap.CarryOver},
		{keyHistory, snap.History},
	} {
		data, err := json.Marshal(doc.val)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", doc.key, err)
		}
		rows = append(rows, StoredValue{Key: doc.key, Value: data, UpdatedAt: now})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (r *StateRepository) load(ctx context.Context, key string) ([]byte, bool, error) {
	var row StoredValue
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return row.Value, true, nil
}

// decodeOr unmarshals into dst, logging and leaving dst untouched on bad JSON.
func decodeOr(key string, raw []byte, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("state: discarding malformed %s: %v", key, err)
		return false
	}
	return true
}
