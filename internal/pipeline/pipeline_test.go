package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/auth"
	"github.com/Vasugoli/classTrack/internal/config"
	"github.com/Vasugoli/classTrack/internal/device"
	"github.com/Vasugoli/classTrack/internal/geo"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
)

type fakeRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeRecorder) Close() error { return nil }

func (f *fakeRecorder) actions() []models.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	actions := make([]models.AuditAction, len(f.entries))
	for i, e := range f.entries {
		actions[i] = e.Action
	}
	return actions
}

func (f *fakeRecorder) hasAction(action models.AuditAction) bool {
	for _, a := range f.actions() {
		if a == action {
			return true
		}
	}
	return false
}

type stubStage struct {
	name    string
	failure *Failure
	ran     *[]string
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	*s.ran = append(*s.ran, s.name)
	return pctx, s.failure
}

type fakeDeviceService struct {
	services.DeviceService
	checkErr error
}

func (f *fakeDeviceService) CheckBinding(ctx context.Context, userID string, info device.Info, entropy string) error {
	return f.checkErr
}

type fakeAttendanceService struct {
	services.AttendanceService
	record *models.Attendance
	err    error
}

func (f *fakeAttendanceService) Mark(ctx context.Context, cmd services.MarkCommand) (*models.Attendance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.Default())
}

func testRequest() *services.MarkAttendanceRequest {
	lat, lon := 21.0285, 105.8542
	return &services.MarkAttendanceRequest{
		ClassCode: "CS101",
		Token:     "0123456789abcdef0123456789abcdef",
		Latitude:  &lat,
		Longitude: &lon,
	}
}

func testFence() geo.Fence {
	return geo.NewFence(config.GeoConfig{
		CampusLatitude:  21.0285,
		CampusLongitude: 105.8542,
		CampusRadius:    200,
	})
}

const testUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

func baseContext() Context {
	return Context{
		IPAddress: "10.0.0.5",
		UserAgent: testUserAgent,
		Platform:  "Windows",
		UserID:    "user-1",
		Role:      models.RoleStudent,
		Request:   testRequest(),
	}
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	var ran []string
	p := New(testLogger(),
		&stubStage{name: "first", ran: &ran},
		&stubStage{name: "second", ran: &ran},
		&stubStage{name: "third", ran: &ran},
	)

	_, failure := p.Run(context.Background(), Context{})
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(ran) != 3 || ran[0] != "first" || ran[1] != "second" || ran[2] != "third" {
		t.Errorf("stage order = %v", ran)
	}
}

func TestPipelineShortCircuitsOnFailure(t *testing.T) {
	var ran []string
	rejection := &Failure{Status: http.StatusForbidden, Code: "OUTSIDE_CAMPUS"}
	p := New(testLogger(),
		&stubStage{name: "first", ran: &ran},
		&stubStage{name: "second", ran: &ran, failure: rejection},
		&stubStage{name: "third", ran: &ran},
	)

	_, failure := p.Run(context.Background(), Context{})
	if failure == nil || failure.Code != "OUTSIDE_CAMPUS" {
		t.Fatalf("failure = %+v, want OUTSIDE_CAMPUS", failure)
	}
	if len(ran) != 2 {
		t.Errorf("stages run = %v, want first two only", ran)
	}
}

func TestAuthenticateStage(t *testing.T) {
	manager := auth.NewManager("test-secret", "classtrack", time.Hour)
	recorder := &fakeRecorder{}
	stage := NewAuthenticateStage(manager, recorder)

	t.Run("missing token", func(t *testing.T) {
		pctx := baseContext()
		pctx.UserID = ""
		pctx.BearerToken = ""

		_, failure := stage.Run(context.Background(), pctx)
		if failure == nil || failure.Status != http.StatusUnauthorized || failure.Code != "AUTH_REQUIRED" {
			t.Fatalf("failure = %+v", failure)
		}
		if !recorder.hasAction(models.AuditUnauthorizedAccess) {
			t.Error("unauthorized access not audited")
		}
		last := recorder.entries[len(recorder.entries)-1]
		if last.UserID != models.UnknownSubject {
			t.Errorf("audited user = %q, want unknown", last.UserID)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		pctx := baseContext()
		pctx.BearerToken = "not-a-jwt"

		_, failure := stage.Run(context.Background(), pctx)
		if failure == nil || failure.Code != "AUTH_REQUIRED" {
			t.Fatalf("failure = %+v", failure)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := manager.Issue("user-7", "s7@example.edu", models.RoleStudent)
		if err != nil {
			t.Fatal(err)
		}
		pctx := baseContext()
		pctx.UserID = ""
		pctx.BearerToken = token

		next, failure := stage.Run(context.Background(), pctx)
		if failure != nil {
			t.Fatalf("unexpected failure: %+v", failure)
		}
		if next.UserID != "user-7" || next.Role != models.RoleStudent {
			t.Errorf("identity = %q/%q", next.UserID, next.Role)
		}
	})
}

func TestAttemptStageAlwaysPasses(t *testing.T) {
	recorder := &fakeRecorder{}
	stage := NewAttemptStage(recorder)

	_, failure := stage.Run(context.Background(), baseContext())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if !recorder.hasAction(models.AuditAttendanceAttempt) {
		t.Error("attempt not audited")
	}
}

func TestAnomalyStageIsAdvisory(t *testing.T) {
	tests := []struct {
		name       string
		userAgent  string
		ip         string
		production bool
		suspicious bool
	}{
		{name: "clean request", userAgent: testUserAgent, ip: "10.0.0.5"},
		{name: "bot user agent", userAgent: "Googlebot/2.1 (+http://www.google.com/bot.html)", ip: "10.0.0.5", suspicious: true},
		{name: "curl", userAgent: "curl/8.5.0 something", ip: "10.0.0.5", suspicious: true},
		{name: "short user agent", userAgent: "Mozilla", ip: "10.0.0.5", suspicious: true},
		{name: "loopback in production", userAgent: testUserAgent, ip: "127.0.0.1", production: true, suspicious: true},
		{name: "loopback in development", userAgent: testUserAgent, ip: "127.0.0.1", production: false, suspicious: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			stage := NewAnomalyStage(recorder, tt.production)

			pctx := baseContext()
			pctx.UserAgent = tt.userAgent
			pctx.IPAddress = tt.ip

			next, failure := stage.Run(context.Background(), pctx)
			if failure != nil {
				t.Fatalf("anomaly stage must never block, got %+v", failure)
			}
			if tt.suspicious != recorder.hasAction(models.AuditSuspiciousActivity) {
				t.Errorf("suspicious audit = %v, want %v",
					recorder.hasAction(models.AuditSuspiciousActivity), tt.suspicious)
			}
			if tt.suspicious && len(next.Suspicions) == 0 {
				t.Error("suspicions not attached to context")
			}
		})
	}
}

func TestDeviceGateStage(t *testing.T) {
	t.Run("malformed attributes", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewDeviceGateStage(&fakeDeviceService{}, recorder)

		pctx := baseContext()
		pctx.UserAgent = "short"

		_, failure := stage.Run(context.Background(), pctx)
		if failure == nil || failure.Code != "DEVICE_INFO_MISSING" || failure.Status != http.StatusBadRequest {
			t.Fatalf("failure = %+v", failure)
		}
	})

	t.Run("not bound", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewDeviceGateStage(&fakeDeviceService{checkErr: services.ErrDeviceNotBound}, recorder)

		_, failure := stage.Run(context.Background(), baseContext())
		if failure == nil || failure.Code != "DEVICE_NOT_BOUND" || failure.Status != http.StatusForbidden {
			t.Fatalf("failure = %+v", failure)
		}
		if !recorder.hasAction(models.AuditDeviceNotBound) {
			t.Error("missing dedicated audit action")
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewDeviceGateStage(&fakeDeviceService{checkErr: services.ErrDeviceMismatch}, recorder)

		_, failure := stage.Run(context.Background(), baseContext())
		if failure == nil || failure.Code != "DEVICE_MISMATCH" {
			t.Fatalf("failure = %+v", failure)
		}
		if !recorder.hasAction(models.AuditDeviceMismatch) {
			t.Error("missing dedicated audit action")
		}
	})

	t.Run("bound device passes and fingerprint set", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewDeviceGateStage(&fakeDeviceService{}, recorder)

		next, failure := stage.Run(context.Background(), baseContext())
		if failure != nil {
			t.Fatalf("unexpected failure: %+v", failure)
		}
		if next.Fingerprint == "" {
			t.Error("fingerprint not derived")
		}
	})
}

func TestGeoGateStage(t *testing.T) {
	t.Run("missing coordinates", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewGeoGateStage(testFence(), recorder)

		pctx := baseContext()
		pctx.Request.Latitude = nil

		_, failure := stage.Run(context.Background(), pctx)
		if failure == nil || failure.Code != "LOCATION_REQUIRED" {
			t.Fatalf("failure = %+v", failure)
		}
	})

	t.Run("malformed coordinates", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewGeoGateStage(testFence(), recorder)

		lat, lon := 91.0, 105.0
		pctx := baseContext()
		pctx.Request.Latitude = &lat
		pctx.Request.Longitude = &lon

		_, failure := stage.Run(context.Background(), pctx)
		if failure == nil || failure.Code != "INVALID_COORDINATES" {
			t.Fatalf("failure = %+v", failure)
		}
	})

	t.Run("outside fence", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewGeoGateStage(testFence(), recorder)

		// ~15km away from the test campus center
		lat, lon := 21.16, 105.8542
		pctx := baseContext()
		pctx.Request.Latitude = &lat
		pctx.Request.Longitude = &lon

		_, failure := stage.Run(context.Background(), pctx)
		if failure == nil || failure.Code != "OUTSIDE_CAMPUS" || failure.Status != http.StatusForbidden {
			t.Fatalf("failure = %+v", failure)
		}
		if !recorder.hasAction(models.AuditGeoViolation) {
			t.Error("geo violation not audited")
		}
		if failure.Details["distance_meters"] == nil {
			t.Error("distance missing from failure details")
		}
	})

	t.Run("inside fence", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewGeoGateStage(testFence(), recorder)

		next, failure := stage.Run(context.Background(), baseContext())
		if failure != nil {
			t.Fatalf("unexpected failure: %+v", failure)
		}
		if next.Location == nil {
			t.Error("sanitized location not attached")
		}
	})
}

func TestCommitStage(t *testing.T) {
	record := &models.Attendance{ID: 1, UserID: "user-1", ClassID: "class-1", Status: models.StatusPresent}

	t.Run("success", func(t *testing.T) {
		recorder := &fakeRecorder{}
		stage := NewCommitStage(&fakeAttendanceService{record: record}, recorder)

		next, failure := stage.Run(context.Background(), baseContext())
		if failure != nil {
			t.Fatalf("unexpected failure: %+v", failure)
		}
		if next.Result == nil || next.Result.ID != 1 {
			t.Error("result not attached")
		}
		if !recorder.hasAction(models.AuditAttendanceSuccess) {
			t.Error("success not audited")
		}
	})

	failures := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantAction models.AuditAction
	}{
		{"used token", services.ErrTokenUsed, "TOKEN_USED", http.StatusBadRequest, models.AuditTokenUsed},
		{"expired token", services.ErrTokenExpired, "TOKEN_EXPIRED", http.StatusBadRequest, models.AuditTokenExpired},
		{"class mismatch", services.ErrTokenClassMismatch, "TOKEN_CLASS_MISMATCH", http.StatusBadRequest, models.AuditTokenInvalid},
		{"unknown token", services.ErrTokenInvalid, "TOKEN_INVALID", http.StatusBadRequest, models.AuditTokenInvalid},
		{"not enrolled", services.ErrNotEnrolled, "NOT_ENROLLED", http.StatusForbidden, models.AuditAttendanceFail},
		{"unknown class", services.ErrClassNotFound, "CLASS_NOT_FOUND", http.StatusNotFound, models.AuditAttendanceFail},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			stage := NewCommitStage(&fakeAttendanceService{err: tt.err}, recorder)

			_, failure := stage.Run(context.Background(), baseContext())
			if failure == nil || failure.Code != tt.wantCode || failure.Status != tt.wantStatus {
				t.Fatalf("failure = %+v, want code %s status %d", failure, tt.wantCode, tt.wantStatus)
			}
			if !recorder.hasAction(tt.wantAction) {
				t.Errorf("audit actions = %v, want %s", recorder.actions(), tt.wantAction)
			}
		})
	}
}

// The full chain must leave an attempt entry plus a terminal entry even when
// the request is rejected midway.
func TestFullPipelineAuditTrail(t *testing.T) {
	manager := auth.NewManager("test-secret", "classtrack", time.Hour)
	recorder := &fakeRecorder{}

	p := New(testLogger(),
		NewAuthenticateStage(manager, recorder),
		NewAttemptStage(recorder),
		NewAnomalyStage(recorder, false),
		NewDeviceGateStage(&fakeDeviceService{checkErr: services.ErrDeviceNotBound}, recorder),
		NewGeoGateStage(testFence(), recorder),
		NewCommitStage(&fakeAttendanceService{}, recorder),
	)

	token, err := manager.Issue("user-1", "s1@example.edu", models.RoleStudent)
	if err != nil {
		t.Fatal(err)
	}
	pctx := baseContext()
	pctx.UserID = ""
	pctx.BearerToken = token

	_, failure := p.Run(context.Background(), pctx)
	if failure == nil || failure.Code != "DEVICE_NOT_BOUND" {
		t.Fatalf("failure = %+v", failure)
	}

	if !recorder.hasAction(models.AuditAttendanceAttempt) {
		t.Error("attempt entry missing")
	}
	if !recorder.hasAction(models.AuditDeviceNotBound) {
		t.Error("terminal entry missing")
	}
}
