package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/common"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/config"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/httpapi/handlers"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/httpapi/middleware"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/store/rabbitmq"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/store/redisstore"
)

func NewRouter(gdb *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) (*gin.Engine, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h, err := handlers.NewHandler(gdb, cfg, rds, rabbit)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	api.GET("/health", h.Ping)

	api.POST("/upload-chat", h.UploadChat)
	api.GET("/chat-files", h.ListChatFiles)
	api.DELETE("/chat-files/:id", h.DeleteChatFile)
	api.GET("/stats", h.GetStats)

	api.POST("/notes", h.CreateNote)
	api.GET("/notes", h.ListNotes)
	api.PUT("/notes/:id", h.UpdateNote)
	api.DELETE("/notes/:id", h.DeleteNote)

	api.GET("/people", h.ListPeople)
	api.DELETE("/people/:id", h.DeletePerson)

	api.POST("/get-recommendation", h.GetRecommendation)
	api.POST("/get-recommendation/async", h.GetRecommendationAsync)
	api.GET("/jobs/:job_id", h.GetJob)

	return r, nil
}
