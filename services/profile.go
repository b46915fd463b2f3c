package services

import (
	"context"
	"errors"

	"attendance_ms/domain"
	"attendance_ms/repository/query_repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	Devices(ctx context.Context, userID uuid.UUID) ([]domain.Credential, error)
}

type ProfileService struct {
	db              *gorm.DB
	profileQuery    query_repository.IProfileQueryRepository
	credentialQuery query_repository.ICredentialQueryRepository
}

func NewProfileService(db *gorm.DB, profileQuery query_repository.IProfileQueryRepository, credentialQuery query_repository.ICredentialQueryRepository) *ProfileService {
	return &ProfileService{db: db, profileQuery: profileQuery, credentialQuery: credentialQuery}
}

// Get returns ErrUnauthenticated when the token names a profile that does not
// exist here.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileQuery.GetByID(s.db.WithContext(ctx), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, storeUnavailable("load profile", err)
	}
	return profile, nil
}

func (s *ProfileService) Devices(ctx context.Context, userID uuid.UUID) ([]domain.Credential, error) {
	creds, err := s.credentialQuery.ListByUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, storeUnavailable("list credentials", err)
	}
	return creds, nil
}
