package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

// fakeRepo is an in-memory Repository used across the service tests. Only
// the behavior the services exercise is implemented.
type fakeRepo struct {
	mu sync.Mutex

	users       map[string]*models.User
	classes     map[string]*models.Class
	schedules   []*models.Schedule
	attendances []*models.Attendance
	bindings    map[string]*models.DeviceBinding
	tokens      map[string]*models.SessionToken
	auditLogs   []*models.AuditLog

	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]*models.User),
		classes:  make(map[string]*models.Class),
		bindings: make(map[string]*models.DeviceBinding),
		tokens:   make(map[string]*models.SessionToken),
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) User() repositories.UserRepository                   { return &fakeUserRepo{f} }
func (f *fakeRepo) Class() repositories.ClassRepository                 { return &fakeClassRepo{f} }
func (f *fakeRepo) Schedule() repositories.ScheduleRepository           { return &fakeScheduleRepo{f} }
func (f *fakeRepo) Attendance() repositories.AttendanceRepository       { return &fakeAttendanceRepo{f} }
func (f *fakeRepo) DeviceBinding() repositories.DeviceBindingRepository { return &fakeBindingRepo{f} }
func (f *fakeRepo) SessionToken() repositories.SessionTokenRepository   { return &fakeTokenRepo{f} }
func (f *fakeRepo) AuditLog() repositories.AuditLogRepository           { return &fakeAuditRepo{f} }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

type fakeUserRepo struct{ f *fakeRepo }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if u, ok := r.f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

type fakeClassRepo struct{ f *fakeRepo }

func (r *fakeClassRepo) Create(ctx context.Context, class *models.Class) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.classes[class.ID] = class
	return nil
}

func (r *fakeClassRepo) GetByID(ctx context.Context, id string) (*models.Class, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if c, ok := r.f.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClassRepo) GetByCode(ctx context.Context, code string) (*models.Class, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, c := range r.f.classes {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClassRepo) List(ctx context.Context, filters repositories.ClassFilters) ([]*models.Class, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Class
	for _, c := range r.f.classes {
		if filters.TeacherID != nil && c.TeacherID != *filters.TeacherID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeScheduleRepo struct{ f *fakeRepo }

func (r *fakeScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	schedule.ID = r.f.id()
	r.f.schedules = append(r.f.schedules, schedule)
	return nil
}

func (r *fakeScheduleRepo) Exists(ctx context.Context, userID, classID string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.schedules {
		if s.UserID == userID && s.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeScheduleRepo) ListByUser(ctx context.Context, userID string) ([]*models.Schedule, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Schedule
	for _, s := range r.f.schedules {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeAttendanceRepo struct{ f *fakeRepo }

func (r *fakeAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	record.Date = models.DayOf(record.Date)
	for _, existing := range r.f.attendances {
		if existing.UserID == record.UserID && existing.ClassID == record.ClassID && existing.Date.Equal(record.Date) {
			existing.Status = record.Status
			existing.MarkedBy = record.MarkedBy
			return existing, nil
		}
	}
	record.ID = r.f.id()
	r.f.attendances = append(r.f.attendances, record)
	return record, nil
}

func (r *fakeAttendanceRepo) ListForDay(ctx context.Context, userID string, day time.Time) ([]*models.Attendance, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	day = models.DayOf(day)
	var out []*models.Attendance
	for _, a := range r.f.attendances {
		if a.UserID == userID && a.Date.Equal(day) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListByUser(ctx context.Context, userID string, filters repositories.AttendanceFilters) ([]*models.Attendance, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Attendance
	for _, a := range r.f.attendances {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListByClass(ctx context.Context, classID string, filters repositories.AttendanceFilters) ([]*models.Attendance, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Attendance
	for _, a := range r.f.attendances {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeBindingRepo struct{ f *fakeRepo }

func (r *fakeBindingRepo) Create(ctx context.Context, binding *models.DeviceBinding) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	binding.ID = r.f.id()
	binding.CreatedAt = time.Now()
	r.f.bindings[binding.UserID] = binding
	return nil
}

func (r *fakeBindingRepo) GetByUser(ctx context.Context, userID string) (*models.DeviceBinding, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if b, ok := r.f.bindings[userID]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBindingRepo) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	_, ok := r.f.bindings[userID]
	return ok, nil
}

func (r *fakeBindingRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.bindings, userID)
	return nil
}

func (r *fakeBindingRepo) List(ctx context.Context) ([]*models.DeviceBinding, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.DeviceBinding
	for _, b := range r.f.bindings {
		out = append(out, b)
	}
	return out, nil
}

type fakeTokenRepo struct{ f *fakeRepo }

func (r *fakeTokenRepo) Create(ctx context.Context, token *models.SessionToken) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	token.ID = r.f.id()
	r.f.tokens[token.Token] = token
	return nil
}

func (r *fakeTokenRepo) GetByTokenForUpdate(ctx context.Context, token string) (*models.SessionToken, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if t, ok := r.f.tokens[token]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) MarkUsed(ctx context.Context, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, t := range r.f.tokens {
		if t.ID == id {
			t.Used = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) DeleteExpiredByClass(ctx context.Context, classID string, now time.Time) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var deleted int64
	for key, t := range r.f.tokens {
		if t.ClassID == classID && (t.Used || now.After(t.ExpiresAt)) {
			delete(r.f.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

type fakeAuditRepo struct{ f *fakeRepo }

func (r *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	entry.ID = r.f.id()
	r.f.auditLogs = append(r.f.auditLogs, entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filters repositories.AuditLogFilters) ([]*models.AuditLog, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.AuditLog
	for _, e := range r.f.auditLogs {
		if filters.UserID != nil && e.UserID != *filters.UserID {
			continue
		}
		if filters.Action != nil && e.Action != *filters.Action {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) Stats(ctx context.Context, from, to time.Time) (*repositories.AuditStats, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return &repositories.AuditStats{TotalLogs: int64(len(r.f.auditLogs))}, nil
}

func (r *fakeAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var kept []*models.AuditLog
	var deleted int64
	for _, e := range r.f.auditLogs {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.f.auditLogs = kept
	return deleted, nil
}

// syncRecorder persists entries inline so tests can assert on them without
// waiting for a background writer.
type syncRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *syncRecorder) Record(ctx context.Context, entry audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *syncRecorder) Close() error { return nil }

func (r *syncRecorder) hasAction(action models.AuditAction) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.Default())
}

func seedClass(f *fakeRepo, teacherID string) *models.Class {
	class := &models.Class{
		ID:        "class-" + strconv.Itoa(len(f.classes)+1),
		Name:      "Algorithms",
		Code:      "CS101",
		TeacherID: teacherID,
	}
	f.classes[class.ID] = class
	return class
}

func seedEnrollment(f *fakeRepo, userID, classID string) {
	f.schedules = append(f.schedules, &models.Schedule{
		UserID:  userID,
		ClassID: classID,
	})
}

func seedToken(f *fakeRepo, classID, value string, expiresAt time.Time, used bool) *models.SessionToken {
	token := &models.SessionToken{
		ID:        f.id(),
		ClassID:   classID,
		Token:     value,
		ExpiresAt: expiresAt,
		Used:      used,
	}
	f.tokens[value] = token
	return token
}
