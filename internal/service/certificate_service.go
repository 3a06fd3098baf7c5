package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// swagger:model CertificateInput
type CertificateInput struct {
	Name            string  `json:"name" binding:"required"`
	Description     *string `json:"description"`
	DifficultyLevel *int    `json:"difficulty_level"`
	Category        *string `json:"category"`
	IsPremium       bool    `json:"is_premium"`
}

type CertificateService struct {
	DB       *gorm.DB
	CertRepo *repository.CertificateRepository
}

func NewCertificateService(db *gorm.DB, certRepo *repository.CertificateRepository) *CertificateService {
	return &CertificateService{DB: db, CertRepo: certRepo}
}

func (s *CertificateService) CreateCertificate(ctx context.Context, in CertificateInput) (*model.Certificate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrValidation)
	}
	if in.DifficultyLevel != nil && (*in.DifficultyLevel < 1 || *in.DifficultyLevel > 5) {
		return nil, fmt.Errorf("%w: difficulty_level must be between 1 and 5", util.ErrValidation)
	}

	cert := &model.Certificate{
		Name:            name,
		Description:     in.Description,
		DifficultyLevel: in.DifficultyLevel,
		Category:        in.Category,
		IsPremium:       in.IsPremium,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		certs := s.CertRepo.WithTx(tx)
		exists, err := certs.ExistsByName(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrDuplicateCertificate
		}
		if err := certs.Create(ctx, cert); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateCertificate
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("certificate created", zap.String("certificate_id", cert.ID), zap.String("name", cert.Name))
	return cert, nil
}

func (s *CertificateService) GetCertificate(ctx context.Context, id string) (*model.Certificate, error) {
	return s.CertRepo.FindByID(ctx, id)
}

func (s *CertificateService) ListCertificates(ctx context.Context, offset, limit int) ([]model.Certificate, error) {
	return s.CertRepo.List(ctx, offset, limit)
}
