package service

import (
	"fmt"
	"sync"

	"Critterly-App/internal/domain/model"
)

// popupDriver 吹き出しの開閉を描画面に反映する
type popupDriver interface {
	OpenPopup(windowID string)
	ClosePopup(windowID string)
}

// InfoWindowController は「同時に開く吹き出しは1つまで」を保証する唯一のコンポーネント
// 吹き出しの状態はOpenとCloseAllからしか変更しない
type InfoWindowController struct {
	mu      sync.Mutex
	surface popupDriver
	windows map[string]*model.InfoWindow
	openID  string
}

// NewInfoWindowController は新しいInfoWindowControllerを作成
func NewInfoWindowController(surface popupDriver) *InfoWindowController {
	return &InfoWindowController{
		surface: surface,
		windows: make(map[string]*model.InfoWindow),
	}
}

// Register は吹き出しを管理対象に加える（閉じた状態で登録）
func (c *InfoWindowController) Register(window *model.InfoWindow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	window.State = model.InfoWindowClosed
	c.windows[window.ID] = window
}

// Open は他の吹き出しをすべて閉じてから指定の吹き出しを開く
func (c *InfoWindowController) Open(windowID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	target, ok := c.windows[windowID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInfoWindowNotFound, windowID)
	}

	for id, w := range c.windows {
		if id != windowID && w.IsOpen() {
			w.State = model.InfoWindowClosed
			c.surface.ClosePopup(id)
		}
	}

	target.State = model.InfoWindowOpen
	c.openID = windowID
	c.surface.OpenPopup(windowID)
	return nil
}

// CloseAll は開いている吹き出しをすべて閉じる
func (c *InfoWindowController) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeAllLocked()
}

func (c *InfoWindowController) closeAllLocked() {
	for id, w := range c.windows {
		if w.IsOpen() {
			w.State = model.InfoWindowClosed
			c.surface.ClosePopup(id)
		}
	}
	c.openID = ""
}

// Reset はすべて閉じたうえで管理対象を空にする（マーカー再構築・破棄時）
func (c *InfoWindowController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeAllLocked()
	c.windows = make(map[string]*model.InfoWindow)
}

// IsOpen は指定の吹き出しが開いているか
func (c *InfoWindowController) IsOpen(windowID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.windows[windowID]
	return ok && w.IsOpen()
}

// OpenWindowID は開いている吹き出しのID（なければ空文字）
func (c *InfoWindowController) OpenWindowID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openID
}

// OpenCount は開いている吹き出しの数
func (c *InfoWindowController) OpenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.windows {
		if w.IsOpen() {
			n++
		}
	}
	return n
}
