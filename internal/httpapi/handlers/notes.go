package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/common"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/memory"
)

type createNoteReq struct {
	Title    string  `json:"title" binding:"required"`
	Content  string  `json:"content" binding:"required"`
	Category *string `json:"category"`
}

func (h *Handler) CreateNote(c *gin.Context) {
	var req createNoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	note, err := h.Svc.AddNote(c.Request.Context(), req.Title, req.Content, req.Category)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, note)
}

func (h *Handler) ListNotes(c *gin.Context) {
	notes, err := h.Svc.ListNotes(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"notes": notes})
}

func (h *Handler) UpdateNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch memory.NoteUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	note, err := h.Svc.UpdateNote(c.Request.Context(), id, patch)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, note)
}

func (h *Handler) DeleteNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteNote(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": id})
}
