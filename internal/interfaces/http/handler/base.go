// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/errors"
)

// respondError 把应用错误映射为统一的错误响应
// 非 AppError 的错误一律按未知错误处理，避免内部细节泄漏到响应体。
func respondError(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)
	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Details:   appErr.Detail,
	})
}
