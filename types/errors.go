package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedEngine     = errors.New("unsupported database engine")
	ErrAdapterCreationFailed = errors.New("failed to create database adapter")
	ErrNotConnected          = errors.New("database not connected")
	ErrConnectionFailed      = errors.New("failed to connect to database")
	ErrDisconnectFailed      = errors.New("failed to disconnect from database")
	ErrQueryFailed           = errors.New("query failed")
	ErrMissingTable          = errors.New("table name is required")

	// ErrAdapterClosed 适配器断开后不可再连接
	ErrAdapterClosed = errors.New("adapter already disconnected")
)

// UnsupportedEngineError 未知引擎，附带可用引擎列表
type UnsupportedEngineError struct {
	Engine    Engine
	Available []Engine
}

func (e *UnsupportedEngineError) Error() string {
	names := make([]string, len(e.Available))
	for i, a := range e.Available {
		names[i] = string(a)
	}
	return fmt.Sprintf("%s %q (available: %s)", ErrUnsupportedEngine, string(e.Engine), strings.Join(names, ", "))
}

func (e *UnsupportedEngineError) Is(target error) bool {
	return target == ErrUnsupportedEngine
}

// Wrap 将底层错误归入 kind，errors.Is/As 对两者都生效
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
