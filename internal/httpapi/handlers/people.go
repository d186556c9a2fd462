package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/common"
)

// ListPeople returns only people with at least one attributed message.
func (h *Handler) ListPeople(c *gin.Context) {
	people, err := h.Svc.ListPeople(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"people": people})
}

func (h *Handler) DeletePerson(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Svc.DeletePerson(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": id})
}
