package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

type captureRepo struct {
	repositories.AuditLogRepository

	mu      sync.Mutex
	entries []*models.AuditLog
	fail    bool
}

func (c *captureRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("database down")
	}
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureRepo) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.Default())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestRecorderPersistsEntries(t *testing.T) {
	repo := &captureRepo{}
	recorder, err := NewRecorder(repo, testLogger())
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	defer recorder.Close()

	recorder.Record(context.Background(), Entry{
		UserID:    "user-1",
		Action:    models.AuditAttendanceSuccess,
		IPAddress: "10.0.0.1",
		Details:   map[string]interface{}{"class_code": "CS101"},
	})

	waitFor(t, func() bool { return repo.count() == 1 })

	repo.mu.Lock()
	entry := repo.entries[0]
	repo.mu.Unlock()

	if entry.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", entry.UserID)
	}
	if entry.Action != models.AuditAttendanceSuccess {
		t.Errorf("action = %q, want %q", entry.Action, models.AuditAttendanceSuccess)
	}
	if entry.Timestamp.IsZero() {
		t.Error("timestamp not defaulted")
	}
	if len(entry.Details) == 0 {
		t.Error("details not serialized")
	}
}

func TestRecorderDefaultsUnknownSubject(t *testing.T) {
	repo := &captureRepo{}
	recorder, err := NewRecorder(repo, testLogger())
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	defer recorder.Close()

	recorder.Record(context.Background(), Entry{Action: models.AuditUnauthorizedAccess})

	waitFor(t, func() bool { return repo.count() == 1 })

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.entries[0].UserID != models.UnknownSubject {
		t.Errorf("user id = %q, want %q", repo.entries[0].UserID, models.UnknownSubject)
	}
}

func TestRecorderSwallowsWriteFailures(t *testing.T) {
	repo := &captureRepo{fail: true}
	recorder, err := NewRecorder(repo, testLogger())
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	// Must not panic or block even when every write fails.
	for i := 0; i < 5; i++ {
		recorder.Record(context.Background(), Entry{
			UserID: "user-1",
			Action: models.AuditAttendanceFail,
		})
	}

	if err := recorder.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("entries persisted despite failing repo: %d", repo.count())
	}
}
