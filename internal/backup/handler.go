// Package backup はバックアップ媒体の状態確認と即時バックアップのHTTP面。
// 実際のコピー処理は storage.Orchestrator 実装（外部コラボレータ）が担う。
package backup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/platform/storage"
)

type Handler struct {
	provider storage.StatusProvider
	orch     storage.Orchestrator
}

func RegisterRoutes(r gin.IRoutes, provider storage.StatusProvider, orch storage.Orchestrator) {
	h := &Handler{provider: provider, orch: orch}
	r.GET("/backup/status", h.Status)
	r.POST("/backup/run", h.Run)
}

func (h *Handler) Status(c *gin.Context) {
	res := gin.H{"status": h.provider.Status()}
	if rep, ok := h.orch.(storage.Reporter); ok {
		if name, modified, ok := rep.LastBackup(); ok {
			res["last_backup"] = gin.H{"filename": name, "modified": modified}
		}
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Run(c *gin.Context) {
	if !h.provider.IsWritable() {
		err := apperr.StorageUnavailable("バックアップ媒体に書き込めません")
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}

	ok, message, path := h.orch.CreateBackupNow(c.Request.Context())
	if !ok {
		err := apperr.StorageUnavailable(message)
		c.JSON(apperr.ToHTTPStatus(err), apperr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "path": path})
}
