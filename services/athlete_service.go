package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
	"github.com/FedericoSorianox/TorneoBJJ/storage"
)

var (
	ErrAthleteNotFound      = errors.New("athlete not found")
	ErrInvalidAthleteData   = errors.New("invalid athlete data")
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
)

type AthleteService interface {
	Create(ctx context.Context, athlete *models.Athlete) error
	GetByID(ctx context.Context, id int) (*models.Athlete, error)
	List(ctx context.Context, limit, offset int) ([]*models.Athlete, error)
	// Leaderboard ranks athletes by ranking points, wins breaking ties.
	Leaderboard(ctx context.Context, limit int) ([]*models.Athlete, error)
	Update(ctx context.Context, athlete *models.Athlete) error
	UploadPhoto(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error)
	Delete(ctx context.Context, id int) error
}

type athleteService struct {
	repo     repositories.AthleteRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewAthleteService builds the athlete service. uploader may be nil when no
// object storage is configured; photo upload then returns
// ErrPhotoStorageDisabled.
func NewAthleteService(repo repositories.AthleteRepository, uploader storage.FileUploader, logger *slog.Logger) AthleteService {
	return &athleteService{repo: repo, uploader: uploader, logger: logger}
}

func (s *athleteService) Create(ctx context.Context, athlete *models.Athlete) error {
	if strings.TrimSpace(athlete.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAthleteData)
	}
	if err := s.repo.Create(ctx, athlete); err != nil {
		return fmt.Errorf("failed to create athlete: %w", err)
	}
	return nil
}

func (s *athleteService) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	athlete, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to get athlete %d: %w", id, err)
	}
	s.resolvePhotoURL(athlete)
	return athlete, nil
}

func (s *athleteService) List(ctx context.Context, limit, offset int) ([]*models.Athlete, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	athletes, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, a := range athletes {
		s.resolvePhotoURL(a)
	}
	return athletes, nil
}

func (s *athleteService) Leaderboard(ctx context.Context, limit int) ([]*models.Athlete, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	athletes, err := s.repo.ListLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, a := range athletes {
		s.resolvePhotoURL(a)
	}
	return athletes, nil
}

// resolvePhotoURL turns the stored object key into a public URL for
// responses. Only the key is persisted.
func (s *athleteService) resolvePhotoURL(a *models.Athlete) {
	if s.uploader == nil || a.PhotoKey == nil || *a.PhotoKey == "" {
		return
	}
	url := s.uploader.GetPublicURL(*a.PhotoKey)
	if url != "" {
		a.PhotoURL = &url
	}
}

func (s *athleteService) Update(ctx context.Context, athlete *models.Athlete) error {
	if err := s.repo.Update(ctx, athlete); err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return ErrAthleteNotFound
		}
		return fmt.Errorf("failed to update athlete %d: %w", athlete.ID, err)
	}
	return nil
}

// UploadPhoto stores the athlete's photo in object storage under a fresh key
// and records the key on the athlete. Returns the public URL.
func (s *athleteService) UploadPhoto(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrPhotoStorageDisabled
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return "", err
	}

	key := fmt.Sprintf("athletes/%d/%s%s", id, uuid.NewString(), path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload athlete photo: %w", err)
	}

	if err := s.repo.UpdatePhotoKey(ctx, id, &result.Key); err != nil {
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Error("failed to remove orphaned photo",
				slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return "", fmt.Errorf("failed to record athlete photo: %w", err)
	}
	return result.Location, nil
}

func (s *athleteService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return ErrAthleteNotFound
		}
		return fmt.Errorf("failed to delete athlete %d: %w", id, err)
	}
	return nil
}
