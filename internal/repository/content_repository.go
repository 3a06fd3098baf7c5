package repository

import (
	"context"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) WithTx(tx *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: tx}
}

func (r *ContentRepository) Create(ctx context.Context, content *model.LearningContent) error {
	return r.DB.WithContext(ctx).Omit("Sections", "Certificate").Create(content).Error
}

func (r *ContentRepository) FindByID(ctx context.Context, id string) (*model.LearningContent, error) {
	var content model.LearningContent
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&content).Error; err != nil {
		return nil, notFound(err)
	}
	return &content, nil
}

// FindWithSections 预加载按 order_index 排序的分段
func (r *ContentRepository) FindWithSections(ctx context.Context, id string) (*model.LearningContent, error) {
	var content model.LearningContent
	err := r.DB.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Where("id = ?", id).
		First(&content).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &content, nil
}

func (r *ContentRepository) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LearningContent{}).Where("source_url = ?", sourceURL).Count(&count).Error
	return count > 0, err
}

func (r *ContentRepository) List(ctx context.Context, offset, limit int) ([]model.LearningContent, error) {
	var contents []model.LearningContent
	err := r.DB.WithContext(ctx).
		Order("created_at ASC").
		Scopes(paginate(offset, limit)).
		Find(&contents).Error
	return contents, err
}

func (r *ContentRepository) ListByCertificate(ctx context.Context, certificateID string, offset, limit int) ([]model.LearningContent, error) {
	var contents []model.LearningContent
	err := r.DB.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		Order("created_at ASC").
		Scopes(paginate(offset, limit)).
		Find(&contents).Error
	return contents, err
}

func (r *ContentRepository) UpdateStatus(ctx context.Context, content *model.LearningContent, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(content).Updates(fields).Error
}

func (r *ContentRepository) FindSections(ctx context.Context, contentID string) ([]model.ContentSection, error) {
	var sections []model.ContentSection
	err := r.DB.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("order_index ASC").
		Find(&sections).Error
	return sections, err
}

// ReplaceSections 删除旧分段后批量写入，需在事务中调用
func (r *ContentRepository) ReplaceSections(ctx context.Context, contentID string, sections []model.ContentSection) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("content_id = ?", contentID).Delete(&model.ContentSection{}).Error; err != nil {
		return err
	}
	if len(sections) == 0 {
		return nil
	}
	for i := range sections {
		sections[i].ContentID = contentID
		sections[i].OrderIndex = i
	}
	return db.CreateInBatches(sections, 100).Error
}

// Delete 删除内容及其分段、学习进度，关联测验的 content_id 置空
func (r *ContentRepository) Delete(ctx context.Context, contentID string) error {
	db := r.DB.WithContext(ctx)
	for _, m := range []interface{}{&model.ContentSection{}, &model.UserLearningProgress{}} {
		if err := db.Where("content_id = ?", contentID).Delete(m).Error; err != nil {
			return err
		}
	}
	if err := db.Model(&model.Quiz{}).Where("content_id = ?", contentID).Update("content_id", nil).Error; err != nil {
		return err
	}
	return db.Where("id = ?", contentID).Delete(&model.LearningContent{}).Error
}
