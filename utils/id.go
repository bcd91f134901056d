package utils

import (
	"github.com/segmentio/ksuid"
)

// NewRequestID 生成按时间排序的请求 ID
func NewRequestID() string {
	return ksuid.New().String()
}

// ValidRequestID 校验外部传入的请求 ID
func ValidRequestID(id string) bool {
	_, err := ksuid.Parse(id)
	return err == nil
}
