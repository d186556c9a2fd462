package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/common"
)

// UploadChat ingests one exported chat file sent as multipart field
// "file".
func (h *Handler) UploadChat(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10005, "file field required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "unreadable upload")
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "unreadable upload")
		return
	}

	res, err := h.Svc.IngestChat(c.Request.Context(), raw, fh.Filename)
	if err != nil {
		log.Printf("[UploadChat] ingest failed file=%s err=%v", fh.Filename, err)
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"message":  "Chat history uploaded and processed successfully",
		"metadata": res,
	})
}

func (h *Handler) ListChatFiles(c *gin.Context) {
	files, err := h.Svc.ListFiles(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"files": files})
}

func (h *Handler) DeleteChatFile(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteFile(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": id})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, stats)
}
