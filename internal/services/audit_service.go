package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

const (
	defaultRetentionDays = 90
	exportBatchLimit     = 10000
	defaultStatsWindow   = 24 * time.Hour
)

var exportHeader = []string{"id", "timestamp", "user_id", "action", "ip_address", "device_id", "location", "details"}

type auditService struct {
	repo     repositories.Repository
	recorder audit.Recorder
	logger   utils.Logger
	now      func() time.Time
}

func NewAuditService(repo repositories.Repository, recorder audit.Recorder, logger utils.Logger) AuditService {
	return &auditService{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *auditService) Logs(ctx context.Context, filters repositories.AuditLogFilters) (*AuditLogPage, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	entries, total, err := s.repo.AuditLog().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return &AuditLogPage{
		Entries: entries,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *auditService) Stats(ctx context.Context, window time.Duration) (*repositories.AuditStats, error) {
	if window <= 0 {
		window = defaultStatsWindow
	}
	now := s.now()
	return s.repo.AuditLog().Stats(ctx, now.Add(-window), now)
}

func (s *auditService) Actions() []models.AuditAction {
	return models.AuditActions
}

// ExportCSV streams matching entries as CSV. The export itself is audited.
func (s *auditService) ExportCSV(ctx context.Context, filters repositories.AuditLogFilters, actorID string, meta RequestMeta, w io.Writer) error {
	entries, err := s.exportEntries(ctx, filters)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, entry := range entries {
		if err := writer.Write(exportRow(entry)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv flush failed: %w", err)
	}

	s.auditExport(ctx, actorID, meta, "csv", len(entries))
	return nil
}

// ExportXLSX writes matching entries as a single-sheet workbook.
func (s *auditService) ExportXLSX(ctx context.Context, filters repositories.AuditLogFilters, actorID string, meta RequestMeta, w io.Writer) error {
	entries, err := s.exportEntries(ctx, filters)
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Audit Logs"
	file.SetSheetName(file.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, entry := range entries {
		row := exportRow(entry)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.auditExport(ctx, actorID, meta, "xlsx", len(entries))
	return nil
}

// Cleanup prunes entries older than the retention window.
func (s *auditService) Cleanup(ctx context.Context, req *AuditCleanupRequest, actorID string, meta RequestMeta) (int64, error) {
	retention := defaultRetentionDays
	if req != nil && req.RetentionDays != nil {
		retention = *req.RetentionDays
	}

	cutoff := s.now().AddDate(0, 0, -retention)
	deleted, err := s.repo.AuditLog().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:    actorID,
		Action:    models.AuditCleanup,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
		Details: map[string]interface{}{
			"retention_days": retention,
			"deleted":        deleted,
		},
	})
	s.logger.Info("audit logs pruned", "deleted", deleted, "retention_days", retention)
	return deleted, nil
}

func (s *auditService) exportEntries(ctx context.Context, filters repositories.AuditLogFilters) ([]*models.AuditLog, error) {
	filters.Limit = exportBatchLimit
	filters.Offset = 0

	entries, _, err := s.repo.AuditLog().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for export: %w", err)
	}
	return entries, nil
}

func (s *auditService) auditExport(ctx context.Context, actorID string, meta RequestMeta, format string, count int) {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    actorID,
		Action:    models.AuditExport,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
		Details: map[string]interface{}{
			"format": format,
			"rows":   count,
		},
	})
}

func exportRow(entry *models.AuditLog) []string {
	location := ""
	if entry.Location != nil {
		location = *entry.Location
	}
	return []string{
		strconv.FormatUint(uint64(entry.ID), 10),
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.UserID,
		string(entry.Action),
		entry.IPAddress,
		entry.DeviceID,
		location,
		string(entry.Details),
	}
}
