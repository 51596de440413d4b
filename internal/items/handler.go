package items

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// スキャン登録
	r.POST("/items", h.Create)

	// 個別取得・更新・削除（:key は数値ID or ULID）
	r.GET("/items/:key", h.Get)
	r.PATCH("/items/:key", h.Update)
	r.DELETE("/items/:key", h.Delete)

	// 履歴一覧・エクスポート
	r.GET("/history", h.History)
	r.GET("/export/csv", h.ExportCSV)
	r.GET("/export/xlsx", h.ExportXLSX)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("", "リクエスト形式が正しくありません")))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), auth.UserID(c), auth.UserName(c), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.Header("Location", "/items/"+res.ItemULID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "item": res})
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.Validation("", "リクエスト形式が正しくありません")))
		return
	}

	res, err := h.svc.Update(c.Request.Context(), auth.UserID(c), auth.UserName(c), c.Param("key"), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": res})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.SoftDelete(c.Request.Context(), auth.UserID(c), auth.UserName(c), c.Param("key")); err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) History(c *gin.Context) {
	q := HistoryQuery{
		Filter:  c.DefaultQuery("filter", "all"),
		Search:  c.Query("search"),
		Sort:    c.DefaultQuery("sort", "newest"),
		Page:    parseIntDefault(c.Query("page"), 1),
		PerPage: parseIntDefault(c.Query("per_page"), defaultPerPage),
	}
	res, err := h.svc.QueryHistory(c.Request.Context(), q)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	data, filename, err := h.svc.ExportCSV(
		c.Request.Context(),
		c.DefaultQuery("filter", "all"),
		c.Query("search"),
		c.Query("encoding"),
	)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	data, filename, err := h.svc.ExportXLSX(
		c.Request.Context(),
		c.DefaultQuery("filter", "all"),
		c.Query("search"),
	)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
