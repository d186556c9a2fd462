package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/common"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/memory"
)

type recommendationReq struct {
	Question string `json:"question" binding:"required"`
}

// GetRecommendation runs the synchronous recommendation path, with an
// optional Redis cache in front of the generation service.
func (h *Handler) GetRecommendation(c *gin.Context) {
	var req recommendationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := c.Request.Context()

	if cached, err := h.Redis.GetRecommendation(ctx, req.Question); err == nil {
		var res memory.RecommendationResult
		if json.Unmarshal([]byte(cached), &res) == nil {
			common.OK(c, res)
			return
		}
	} else if err != redis.Nil {
		log.Printf("[GetRecommendation] cache read failed err=%v", err)
	}

	res, err := h.Svc.Recommend(ctx, req.Question)
	if err != nil {
		failFromErr(c, err)
		return
	}

	if payload, err := json.Marshal(res); err == nil {
		if err := h.Redis.SetRecommendation(ctx, req.Question, string(payload)); err != nil {
			log.Printf("[GetRecommendation] cache write failed err=%v", err)
		}
	}

	common.OK(c, res)
}

// GetRecommendationAsync enqueues a recommendation job and returns its
// id; the worker picks it up from the queue.
func (h *Handler) GetRecommendationAsync(c *gin.Context) {
	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "job queue not configured")
		return
	}

	var req recommendationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	job := &memory.Job{
		ID:       jobID,
		Question: req.Question,
		Status:   memory.JobQueued,
	}
	if err := h.Svc.CreateJob(c.Request.Context(), job); err != nil {
		log.Printf("[GetRecommendationAsync] create job failed job_id=%s err=%v", jobID, err)
		failFromErr(c, err)
		return
	}

	if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
		log.Printf("[GetRecommendationAsync] publish failed job_id=%s err=%v", job.ID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
		return
	}

	common.OK(c, gin.H{"job_id": job.ID})
}

func (h *Handler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	j, err := h.Svc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"job": j})
}
