package repository

import (
	"context"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) WithTx(tx *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: tx}
}

func (r *CertificateRepository) Create(ctx context.Context, cert *model.Certificate) error {
	return r.DB.WithContext(ctx).Create(cert).Error
}

func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&cert).Error; err != nil {
		return nil, notFound(err)
	}
	return &cert, nil
}

func (r *CertificateRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Certificate{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *CertificateRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Certificate{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List 按创建时间分页；并发插入时偏移分页不保证稳定
func (r *CertificateRepository) List(ctx context.Context, offset, limit int) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.WithContext(ctx).
		Order("created_at ASC").
		Scopes(paginate(offset, limit)).
		Find(&certs).Error
	return certs, err
}
