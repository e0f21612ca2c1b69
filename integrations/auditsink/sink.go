// Package auditsink persists committed ledger events to a SQL database for
// audit queries. SQLite is used by default; postgres DSNs select postgres.
package auditsink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"rewardledger/core/events"
)

const defaultListLimit = 100

// Record is one audited event.
type Record struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sequence   uint64    `gorm:"uniqueIndex;not null"`
	Type       string    `gorm:"index;not null"`
	Epoch      uint64    `gorm:"index"`
	Subject    string    `gorm:"index"`
	Attributes string    `gorm:"type:text;not null"`
	RecordedAt time.Time `gorm:"not null"`
}

// TableName pins the table name.
func (Record) TableName() string { return "ledger_events" }

// Decoded returns the event attributes.
func (r Record) Decoded() (map[string]string, error) {
	attrs := map[string]string{}
	if r.Attributes == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(r.Attributes), &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// Open connects to dsn. DSNs starting with postgres:// or postgresql://, or
// written in key=value form with a host, use postgres; anything else is a
// SQLite DSN.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("auditsink: dsn required")
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	var dialector gorm.Dialector
	if isPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("auditsink: open: %w", err)
	}
	return db, nil
}

func isPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=")
}

// AutoMigrate creates or updates the audit table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Record{})
}

// Sink is an events.Emitter writing committed events to the database.
// Replayed sequences are ignored.
type Sink struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

// New migrates db and returns a sink writing to it.
func New(db *gorm.DB, log *slog.Logger) (*Sink, error) {
	if db == nil {
		return nil, errors.New("auditsink: database required")
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auditsink: migrate: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sink{db: db, logger: log, now: time.Now}, nil
}

// Emit implements events.Emitter. Only committed records are stored.
func (s *Sink) Emit(evt events.Event) {
	record, ok := evt.(events.Record)
	if !ok || record.Payload == nil {
		return
	}
	if err := s.Store(context.Background(), record); err != nil {
		s.logger.Error("audit sink write failed",
			slog.String("type", record.EventType()),
			slog.Uint64("sequence", record.Payload.Sequence),
			slog.Any("error", err))
	}
}

// Store writes record.
func (s *Sink) Store(ctx context.Context, record events.Record) error {
	payload := record.Payload
	attrs, err := json.Marshal(payload.Attributes)
	if err != nil {
		return err
	}
	row := Record{
		ID:         uuid.New(),
		Sequence:   payload.Sequence,
		Type:       payload.Type,
		Subject:    subjectOf(payload.Attributes),
		Attributes: string(attrs),
		RecordedAt: s.now().UTC(),
	}
	if raw, ok := payload.Attributes["epoch"]; ok {
		if epoch, err := strconv.ParseUint(raw, 10, 64); err == nil {
			row.Epoch = epoch
		}
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "sequence"}}, DoNothing: true}).
		Create(&row).Error
}

func subjectOf(attrs map[string]string) string {
	for _, key := range []string{"user", "address", "holder", "admin"} {
		if value := attrs[key]; value != "" {
			return value
		}
	}
	return ""
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Type    string
	Subject string
	Epoch   uint64
	// After returns records with a sequence strictly greater than After.
	After uint64
	Limit int
}

// List returns audited records in sequence order.
func (s *Sink) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := s.db.WithContext(ctx).Model(&Record{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Epoch != 0 {
		query = query.Where("epoch = ?", filter.Epoch)
	}
	if filter.After != 0 {
		query = query.Where("sequence > ?", filter.After)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	var out []Record
	if err := query.Order("sequence asc").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LastSequence returns the highest stored sequence, zero when empty.
func (s *Sink) LastSequence(ctx context.Context) (uint64, error) {
	var last int64
	row := s.db.WithContext(ctx).Model(&Record{}).Select("COALESCE(MAX(sequence), 0)").Row()
	if err := row.Scan(&last); err != nil {
		return 0, err
	}
	return uint64(last), nil
}

// Close releases the underlying connection pool.
func (s *Sink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
