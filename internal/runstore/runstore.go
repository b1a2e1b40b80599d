// Package runstore keeps a sqlite ledger of stage runs and generation
// attempts under the output base, so batch runs and reruns can be audited
// after the fact. The ledger is advisory: a failure to open or write it
// never fails a stage.
package runstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/courseforge/internal/pkg/logger"
)

// StageRun is one invocation of one pipeline stage for one course.
type StageRun struct {
	ID         uint       `gorm:"primaryKey"`
	RunID      string     `gorm:"size:36;uniqueIndex"`
	Course     string     `gorm:"size:255;index"`
	Stage      string     `gorm:"size:64;index"`
	Status     string     `gorm:"size:32"`
	ExitCode   int
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GenerationAttempt is one model call outcome inside a run.
type GenerationAttempt struct {
	ID            uint   `gorm:"primaryKey"`
	RunID         string `gorm:"size:36;index"`
	ContentType   string `gorm:"size:32;index"`
	ModuleID      int
	SessionNum    int
	Attempt       int
	Success       bool
	ErrorCategory string `gorm:"size:32"`
	ErrorMessage  string
	QualityScore  float64
	CreatedAt     time.Time
}

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Store wraps the gorm handle.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open opens (or creates) the ledger database and migrates its schema.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open run ledger %s: %w", path, err)
	}
	if err := db.AutoMigrate(&StageRun{}, &GenerationAttempt{}); err != nil {
		return nil, fmt.Errorf("migrate run ledger: %w", err)
	}
	return &Store{db: db, log: log.With("service", "RunStore")}, nil
}

// BeginRun records a stage start and returns the run id later writes hang
// off.
func (s *Store) BeginRun(course, stage string) string {
	runID := uuid.NewString()
	run := StageRun{
		RunID:     runID,
		Course:    course,
		Stage:     stage,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.db.Create(&run).Error; err != nil {
		s.log.Warn("run ledger write failed", "error", err.Error())
	}
	return runID
}

// FinishRun closes out a run with its exit code and a JSON summary.
func (s *Store) FinishRun(runID string, exitCode int, summary any) {
	status := StatusSucceeded
	if exitCode != 0 {
		status = StatusFailed
	}
	now := time.Now()
	fields := map[string]any{
		"status":      status,
		"exit_code":   exitCode,
		"finished_at": &now,
	}
	if summary != nil {
		if raw, err := json.Marshal(summary); err == nil {
			fields["summary"] = datatypes.JSON(raw)
		}
	}
	if err := s.db.Model(&StageRun{}).Where("run_id = ?", runID).Updates(fields).Error; err != nil {
		s.log.Warn("run ledger update failed", "run_id", runID, "error", err.Error())
	}
}

// RecordAttempt logs one generation attempt outcome.
func (s *Store) RecordAttempt(runID string, a GenerationAttempt) {
	a.RunID = runID
	if err := s.db.Create(&a).Error; err != nil {
		s.log.Warn("attempt ledger write failed", "run_id", runID, "error", err.Error())
	}
}

// RecentFailures returns the newest failed attempts, most recent first.
func (s *Store) RecentFailures(limit int) ([]GenerationAttempt, error) {
	var out []GenerationAttempt
	err := s.db.
		Where("success = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RunsForCourse lists a course's stage runs, newest first.
func (s *Store) RunsForCourse(course string, limit int) ([]StageRun, error) {
	var out []StageRun
	err := s.db.
		Where("course = ?", course).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
