//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/himanishpuri/AutoTabber/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "autotabber.sqlite3"
const errDBClientNil = "db client is nil"

var ErrRecordingNotFound = models.ErrRecordingNotFound

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Recording struct {
	ID         string  `gorm:"primaryKey;type:varchar(36)"`
	Source     string  `gorm:"index:idx_recording_source" json:"source"`
	Key        string  `gorm:"type:varchar(4)" json:"key"`
	FrameSize  int     `json:"frame_size"`
	MinCount   int     `json:"min_count"`
	MinVolume  float64 `json:"min_volume"`
	Full       bool    `json:"full"`
	SampleRate int     `json:"sample_rate"`
	Text       string  `json:"text"`
	NoteCount  int     `json:"note_count"`
	CreatedAt  time.Time
}

type Note struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RecordingID string `gorm:"type:varchar(36);index:idx_note_recording,priority:1" json:"recording_id"`
	Seq         int    `gorm:"index:idx_note_recording,priority:2" json:"seq"`
	Symbol      string `gorm:"type:varchar(8)" json:"symbol"`
	MIDI        uint8  `json:"midi"`
	Frame       int64  `json:"frame"`
}

// NewDBClient opens the database named by AUTOTAB_DB_PATH, or DefaultDBFile.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("AUTOTAB_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Recording{}, &Note{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveRecording stores rec and its notes in one transaction and returns the
// new recording ID. rec.ID and rec.CreatedAt are ignored.
func (c *DBClient) SaveRecording(rec models.Recording) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	row := Recording{
		ID:         uuid.NewString(),
		Source:     rec.Source,
		Key:        rec.Settings.Key,
		FrameSize:  rec.Settings.FrameSize,
		MinCount:   rec.Settings.MinCount,
		MinVolume:  rec.Settings.MinVolume,
		Full:       rec.Settings.Full,
		SampleRate: rec.Settings.SampleRate,
		Text:       rec.Text,
		NoteCount:  rec.NoteCount,
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("creating recording: %w", err)
		}
		if len(rec.Notes) == 0 {
			return nil
		}
		notes := make([]Note, 0, len(rec.Notes))
		for _, n := range rec.Notes {
			notes = append(notes, Note{
				RecordingID: row.ID,
				Seq:         n.Seq,
				Symbol:      n.Symbol,
				MIDI:        n.MIDI,
				Frame:       n.Frame,
			})
		}
		if err := tx.CreateInBatches(notes, 500).Error; err != nil {
			return fmt.Errorf("batch insert notes: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

// GetRecording loads a recording with its notes in emission order.
func (c *DBClient) GetRecording(id string) (*models.Recording, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Recording
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecordingNotFound, id)
		}
		return nil, fmt.Errorf("querying recording: %w", err)
	}

	var notes []Note
	if err := c.DB.Where("recording_id = ?", id).Order("seq").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}

	rec := toModel(row)
	rec.Notes = make([]models.Note, 0, len(notes))
	for _, n := range notes {
		rec.Notes = append(rec.Notes, models.Note{
			Seq:    n.Seq,
			Symbol: n.Symbol,
			MIDI:   n.MIDI,
			Frame:  n.Frame,
		})
	}
	return &rec, nil
}

// ListRecordings returns all recordings, newest first, without notes.
func (c *DBClient) ListRecordings() ([]models.Recording, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Recording
	if err := c.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	out := make([]models.Recording, 0, len(rows))
	for _, r := range rows {
		out = append(out, toModel(r))
	}
	return out, nil
}

// DeleteRecording removes a recording and its notes.
func (c *DBClient) DeleteRecording(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", id).Delete(&Note{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Recording{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrRecordingNotFound, id)
		}
		return nil
	})
}

// NoteCount returns the number of stored notes for a recording.
func (c *DBClient) NoteCount(id string) (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var count int64
	if err := c.DB.Model(&Note{}).Where("recording_id = ?", id).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting notes: %w", err)
	}
	return int(count), nil
}

func toModel(r Recording) models.Recording {
	return models.Recording{
		ID:     r.ID,
		Source: r.Source,
		Settings: models.Settings{
			Key:        r.Key,
			FrameSize:  r.FrameSize,
			MinCount:   r.MinCount,
			MinVolume:  r.MinVolume,
			Full:       r.Full,
			SampleRate: r.SampleRate,
		},
		Text:      r.Text,
		NoteCount: r.NoteCount,
		CreatedAt: r.CreatedAt,
	}
}
