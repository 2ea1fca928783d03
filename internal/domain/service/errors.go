package service

import "errors"

var (
	// ErrSessionClosed は破棄済みのセッションへの操作
	ErrSessionClosed = errors.New("map session is closed")
	// ErrInfoWindowNotFound は登録されていない吹き出しIDの指定
	ErrInfoWindowNotFound = errors.New("info window not found")
	// ErrMarkerNotFound は存在しないマーカーIDの指定
	ErrMarkerNotFound = errors.New("marker not found")
)
