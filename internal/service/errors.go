package service

import (
	"errors"
	"fmt"
)

// ==================== 错误分类 ====================
// 控制器按类型映射状态码：ValidationError -> 400, NotFoundError -> 404, InternalError -> 500

// ValidationError 参数缺失或格式错误
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError 店铺 / 商品 / 推广链接无法解析
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// InternalError 持久化失败、URL 构造失败等
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

// NewValidationError 创建参数错误
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Internal 包装为内部错误；已是分类错误的原样返回
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	var ie *InternalError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ie) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// ==================== 预定义错误 ====================

var (
	ErrMissingParams   = &ValidationError{Msg: "Missing params"}
	ErrSlugTaken       = &ValidationError{Msg: "Slug already exists"}
	ErrStoreNotFound   = &NotFoundError{Msg: "Store not found"}
	ErrProductNotFound = &NotFoundError{Msg: "Product not found"}
	ErrLinkNotFound    = &NotFoundError{Msg: "Marketplace link not found"}
)

// 认证相关
var (
	ErrInvalidEmail    = &ValidationError{Msg: "Invalid email"}
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrUserNotFound    = errors.New("user not found")
	ErrTooManyRequests = errors.New("too many requests")
)
