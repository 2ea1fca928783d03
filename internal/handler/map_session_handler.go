package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/service"
	"Critterly-App/internal/logging"
	"Critterly-App/internal/usecase"
)

// MapSessionHandler はマップセッションAPIのハンドラー
type MapSessionHandler struct {
	useCase usecase.MapSessionUseCase
}

// NewMapSessionHandler は新しいMapSessionHandlerインスタンスを作成
func NewMapSessionHandler(useCase usecase.MapSessionUseCase) *MapSessionHandler {
	return &MapSessionHandler{
		useCase: useCase,
	}
}

// RegisterRoutes はマップセッションのエンドポイントを登録する
func (h *MapSessionHandler) RegisterRoutes(r gin.IRouter) {
	sessions := r.Group("/map/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSnapshot)
		sessions.POST("/:id/refresh", h.Refresh)
		sessions.POST("/:id/markers/:markerId/click", h.ClickMarker)
		sessions.POST("/:id/popups/close", h.ClosePopups)
		sessions.DELETE("/:id", h.DeleteSession)
	}
}

// CreateSession はマップセッションを作成するエンドポイント
// POST /map/sessions?postId=...&location=...
func (h *MapSessionHandler) CreateSession(c *gin.Context) {
	var hint model.FocusHint
	if err := c.ShouldBindQuery(&hint); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "クエリパラメータの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	var focus *model.FocusHint
	if hint.PostID != "" || hint.Address != "" {
		focus = &hint
	}

	snapshot, err := h.useCase.CreateSession(c.Request.Context(), focus)
	if err != nil {
		respondError(c, "マップセッションの作成に失敗しました", err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// GetSnapshot はセッションの表示状態を返すエンドポイント
// GET /map/sessions/:id?zoom=...
func (h *MapSessionHandler) GetSnapshot(c *gin.Context) {
	var zoom *int
	if raw := c.Query("zoom"); raw != "" {
		z, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "zoomは整数で指定してください",
				"details": err.Error(),
			})
			return
		}
		zoom = &z
	}

	snapshot, err := h.useCase.GetSnapshot(c.Request.Context(), c.Param("id"), zoom)
	if err != nil {
		respondError(c, "マップセッションの取得に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Refresh は投稿を読み直してマーカーを再構築するエンドポイント
// POST /map/sessions/:id/refresh
func (h *MapSessionHandler) Refresh(c *gin.Context) {
	snapshot, err := h.useCase.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "マーカーの再構築に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ClickMarker はマーカーの吹き出しを開くエンドポイント
// POST /map/sessions/:id/markers/:markerId/click
func (h *MapSessionHandler) ClickMarker(c *gin.Context) {
	snapshot, err := h.useCase.ClickMarker(c.Request.Context(), c.Param("id"), c.Param("markerId"))
	if err != nil {
		respondError(c, "吹き出しを開けませんでした", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ClosePopups は全吹き出しを閉じるエンドポイント
// POST /map/sessions/:id/popups/close
func (h *MapSessionHandler) ClosePopups(c *gin.Context) {
	snapshot, err := h.useCase.ClosePopups(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "吹き出しを閉じられませんでした", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// DeleteSession はセッションを破棄するエンドポイント
// DELETE /map/sessions/:id
func (h *MapSessionHandler) DeleteSession(c *gin.Context) {
	if err := h.useCase.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "マップセッションの破棄に失敗しました", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// respondError はエラーの種類からステータスコードを決めてレスポンスを返す
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, service.ErrMarkerNotFound),
		errors.Is(err, service.ErrInfoWindowNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidZoom):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logging.Error().Err(err).Str("path", c.FullPath()).Msg("❌ " + message)
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
