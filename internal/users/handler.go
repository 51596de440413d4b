package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterPublicRoutes は認証前に呼べるルート（ログインと自己登録）。
func RegisterPublicRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/login", h.Login)
	r.GET("/login/users", h.LoginUsers)
	r.POST("/register", h.SelfRegister)
}

// RegisterAdminRoutes はユーザー管理（管理者のみ）。
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/users", h.List)
	r.POST("/users", h.Create)
	r.PATCH("/users/:id", h.Update)
	r.DELETE("/users/:id", h.Delete)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("ユーザー", "ユーザーを選択してください")))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) LoginUsers(c *gin.Context) {
	res, err := h.svc.LoginUsers(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": res})
}

func (h *Handler) SelfRegister(c *gin.Context) {
	var req SelfRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("ユーザー名", "名前を入力してください")))
		return
	}

	res, err := h.svc.SelfRegister(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": res})
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": res})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("ユーザー名", "名前を入力してください")))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), auth.UserID(c), auth.UserName(c), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": res})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("id", "IDが正しくありません")))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("", "リクエスト形式が正しくありません")))
		return
	}

	res, err := h.svc.Update(c.Request.Context(), auth.UserID(c), auth.UserName(c), id, req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": res})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("id", "IDが正しくありません")))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), auth.UserName(c), id); err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
