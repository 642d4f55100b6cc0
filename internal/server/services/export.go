package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/logging"
	"github.com/tripcraft/tripcraft/internal/server/models"
	"github.com/tripcraft/tripcraft/internal/server/pdf"
	"github.com/tripcraft/tripcraft/internal/server/repositories/repomanager"
	"github.com/tripcraft/tripcraft/internal/server/storage"
)

// ExportResult points at one uploaded PDF.
type ExportResult struct {
	DownloadURL string
	FileName    string
	Size        int
}

// ExportService renders a trip to PDF and uploads it to object storage.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	logger      logging.Logger
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, logger logging.Logger) *ExportService {
	return &ExportService{db: db, repomanager: m, store: store, logger: logger}
}

// Export builds the PDF for an owned trip, uploads it, and returns a
// time-limited download link.
func (s *ExportService) Export(ctx context.Context, userID, tripID string) (*ExportResult, error) {
	trip, err := s.repomanager.Trips(s.db).GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, common.ErrorForbidden
	}

	detail, err := loadTripDetail(ctx, s.db, s.repomanager, trip)
	if err != nil {
		return nil, err
	}

	doc := &pdf.TripDocument{
		Trip:        trip,
		Activities:  map[string][]*models.Activity{},
		BudgetItems: detail.BudgetItems,
		Notes:       detail.Notes,
	}
	for _, d := range detail.Days {
		doc.Days = append(doc.Days, d.Day)
		doc.Activities[d.Day.ID] = d.Activities
	}

	pdfBytes, err := pdf.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render trip %s: %w", tripID, err)
	}

	key := storage.ExportKey(tripID)
	if err := s.store.Upload(ctx, key, "application/pdf", pdfBytes); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.store.DownloadURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.logger.Info(ctx, "trip exported", "trip_id", tripID, "key", key, "bytes", len(pdfBytes))

	return &ExportResult{
		DownloadURL: url,
		FileName:    path.Base(key),
		Size:        len(pdfBytes),
	}, nil
}
