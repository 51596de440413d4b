package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// 参照は全ユーザー、更新は管理者グループ側で登録する。
func RegisterReadRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/settings/return-days", h.GetReturnDays)
}

func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.PUT("/settings/return-days", h.PutReturnDays)
}

func (h *Handler) GetReturnDays(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"return_days": h.svc.ReturnDays(c.Request.Context())})
}

func (h *Handler) PutReturnDays(c *gin.Context) {
	var req struct {
		ReturnDays *int `json:"return_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("返却期限日数", "返却期限日数を入力してください")))
		return
	}

	n, err := h.svc.SetReturnDays(c.Request.Context(), auth.UserID(c), auth.UserName(c), req.ReturnDays)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "return_days": n})
}
