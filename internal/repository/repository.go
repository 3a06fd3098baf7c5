package repository

import (
	"errors"

	"certgo_backend/internal/util"

	"gorm.io/gorm"
)

// notFound 将 gorm 的记录不存在转换为领域错误
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound
	}
	return err
}

func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 {
			limit = util.DefaultLimit
		}
		return db.Offset(offset).Limit(limit)
	}
}
