package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Pagination 读取 offset/limit 查询参数，非法值回退为默认值
func Pagination(c *gin.Context) (offset, limit int) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit
}

func StringPtr(s string) *string {
	return &s
}

// EmptyToNil 空字符串转为 nil，便于可空列
func EmptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
