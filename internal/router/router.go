package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aether-planner/internal/handler"
)

func New(plannerHandler *handler.PlannerHandler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.GET("/state", plannerHandler.GetState)
	api.POST("/timetable", plannerHandler.Generate)

	api.GET("/tasks", plannerHandler.ListTasks)
	api.POST("/tasks", plannerHandler.AddTask)
	api.POST("/tasks/reorder", plannerHandler.Reorder)
	api.PUT("/tasks/:id", plannerHandler.UpdateTask)
	api.POST("/tasks/:id/status", plannerHandler.ToggleStatus)
	api.DELETE("/carryover/:id", plannerHandler.RemoveCarryOver)

	api.GET("/notifications", plannerHandler.ListNotifications)
	api.DELETE("/notifications/:id", plannerHandler.DismissNotification)
	api.POST("/notifications/:id/complete", plannerHandler.CompleteFromNotification)

	api.GET("/review", plannerHandler.GetReview)
	api.POST("/review", plannerHandler.StartReview)
	api.POST("/day/plan-tomorrow", plannerHandler.PlanTomorrow)
	api.POST("/day/reset", plannerHandler.ResetDay)

	api.GET("/history", plannerHandler.GetHistory)
	api.GET("/settings", plannerHandler.GetSettings)
	api.PUT("/settings", plannerHandler.UpdateSettings)

	return engine
}
