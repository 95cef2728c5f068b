package volprofile

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat 载荷既不是新版嵌套结构也不是旧版扁平结构。
	ErrUnrecognizedFormat = errors.New("unrecognized result format")
	// ErrMalformedJSON 载荷不是合法 JSON。
	ErrMalformedJSON = errors.New("malformed json payload")
)

// SchemaError reports a payload that failed structural validation.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema mismatch: %s", e.Reason)
	}
	return fmt.Sprintf("schema mismatch at %s: %s", e.Path, e.Reason)
}

// FieldError 表示配置映射引用的嵌套字段缺失。
type FieldError struct {
	Path string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Path)
}
