package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"traqcheck/candidate-onboarding/internal/models"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrDocumentNotFound  = errors.New("document not found")
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	// List returns every candidate, most recently created first.
	List(ctx context.Context) ([]models.Candidate, error)
	AppendRequest(ctx context.Context, id uuid.UUID, request *models.DocumentRequest) error
	AppendDocument(ctx context.Context, id uuid.UUID, document *models.Document) error
	FindDocument(ctx context.Context, documentID uuid.UUID) (*models.Document, error)
	// TransitionStatus moves the candidate from one status to another and reports
	// false when the candidate was not in the expected status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.ExtractionStatus) (bool, error)
	CompleteExtraction(ctx context.Context, id uuid.UUID, fields *models.ExtractedFields) (bool, error)
	FailExtraction(ctx context.Context, id uuid.UUID, from models.ExtractionStatus, reason string) (bool, error)
	FindByStatus(ctx context.Context, status models.ExtractionStatus, limit int) ([]models.Candidate, error)
	FindStale(ctx context.Context, status models.ExtractionStatus, olderThan time.Time, limit int) ([]models.Candidate, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("DocumentRequests", "Documents").Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.withHistory(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&candidate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.withHistory(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) AppendRequest(ctx context.Context, id uuid.UUID, request *models.DocumentRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		position, err := r.nextPosition(tx, id, &models.DocumentRequest{})
		if err != nil {
			return err
		}
		if request.ID == uuid.Nil {
			request.ID = uuid.New()
		}
		request.CandidateID = id
		request.Position = position
		return tx.Create(request).Error
	})
	if err != nil {
		if errors.Is(err, ErrCandidateNotFound) {
			return err
		}
		return fmt.Errorf("failed to append document request: %w", err)
	}
	return nil
}

func (r *candidateRepository) AppendDocument(ctx context.Context, id uuid.UUID, document *models.Document) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		position, err := r.nextPosition(tx, id, &models.Document{})
		if err != nil {
			return err
		}
		if document.ID == uuid.Nil {
			document.ID = uuid.New()
		}
		document.CandidateID = id
		document.Position = position
		return tx.Create(document).Error
	})
	if err != nil {
		if errors.Is(err, ErrCandidateNotFound) {
			return err
		}
		return fmt.Errorf("failed to append document: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindDocument(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).Where("id = ?", documentID).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &document, nil
}

func (r *candidateRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.ExtractionStatus) (bool, error) {
	return r.conditionalUpdate(ctx, id, from, map[string]interface{}{
		"extraction_status": to,
		"updated_at":        time.Now(),
	})
}

func (r *candidateRepository) CompleteExtraction(ctx context.Context, id uuid.UUID, fields *models.ExtractedFields) (bool, error) {
	scores := make(map[string]float64, len(fields.ConfidenceScores))
	for k, v := range fields.ConfidenceScores {
		scores[k] = v
	}
	return r.conditionalUpdate(ctx, id, models.StatusProcessing, map[string]interface{}{
		"name":              fields.Name,
		"email":             fields.Email,
		"phone":             fields.Phone,
		"company":           fields.Company,
		"designation":       fields.Designation,
		"skills":            datatypes.NewJSONSlice(append([]string{}, fields.Skills...)),
		"confidence_scores": datatypes.NewJSONType(scores),
		"extraction_status": models.StatusCompleted,
		"extraction_error":  nil,
		"updated_at":        time.Now(),
	})
}

func (r *candidateRepository) FailExtraction(ctx context.Context, id uuid.UUID, from models.ExtractionStatus, reason string) (bool, error) {
	return r.conditionalUpdate(ctx, id, from, map[string]interface{}{
		"name":              nil,
		"email":             nil,
		"phone":             nil,
		"company":           nil,
		"designation":       nil,
		"skills":            datatypes.NewJSONSlice([]string{}),
		"confidence_scores": datatypes.NewJSONType(map[string]float64{}),
		"extraction_status": models.StatusFailed,
		"extraction_error":  reason,
		"updated_at":        time.Now(),
	})
}

func (r *candidateRepository) FindByStatus(ctx context.Context, status models.ExtractionStatus, limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.WithContext(ctx).
		Where("extraction_status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find %s candidates: %w", status, err)
	}
	return candidates, nil
}

func (r *candidateRepository) FindStale(ctx context.Context, status models.ExtractionStatus, olderThan time.Time, limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.WithContext(ctx).
		Where("extraction_status = ? AND updated_at < ?", status, olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) Stats(ctx context.Context) (*models.Stats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.Stats{}

	type statusCount struct {
		ExtractionStatus models.ExtractionStatus
		Count            int64
	}
	var counts []statusCount
	err := db.Model(&models.Candidate{}).
		Select("extraction_status, count(*) as count").
		Group("extraction_status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}
	for _, c := range counts {
		stats.TotalCandidates += c.Count
		switch c.ExtractionStatus {
		case models.StatusPending:
			stats.Pending = c.Count
		case models.StatusProcessing:
			stats.Processing = c.Count
		case models.StatusCompleted:
			stats.Completed = c.Count
		case models.StatusFailed:
			stats.Failed = c.Count
		}
	}

	if err := db.Model(&models.Document{}).Count(&stats.DocumentsSubmitted).Error; err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if err := db.Model(&models.DocumentRequest{}).Count(&stats.RequestsGenerated).Error; err != nil {
		return nil, fmt.Errorf("failed to count document requests: %w", err)
	}
	return stats, nil
}

func (r *candidateRepository) withHistory(db *gorm.DB) *gorm.DB {
	return db.
		Preload("DocumentRequests", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// nextPosition returns the next slot of an append-only child collection. The unique
// (candidate_id, position) index turns a lost race into an insert error.
func (r *candidateRepository) nextPosition(tx *gorm.DB, id uuid.UUID, child interface{}) (int, error) {
	var exists int64
	if err := tx.Model(&models.Candidate{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrCandidateNotFound
	}
	var count int64
	if err := tx.Model(child).Where("candidate_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *candidateRepository) conditionalUpdate(ctx context.Context, id uuid.UUID, from models.ExtractionStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ? AND extraction_status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update candidate status: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Candidate{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return false, fmt.Errorf("failed to find candidate: %w", err)
	}
	if exists == 0 {
		return false, ErrCandidateNotFound
	}
	return false, nil
}
