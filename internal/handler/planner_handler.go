package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "aether-planner/internal/errors"
	"aether-planner/internal/model"
	"aether-planner/internal/service"
)

// PlannerHandler exposes every action the planner UI performs.
type PlannerHandler struct {
	planner *service.PlannerService
}

func NewPlannerHandler(planner *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{planner: planner}
}

type generateRequest struct {
	UserInput string `json:"userInput"`
	DayStart  string `json:"dayStart"`
	DayEnd    string `json:"dayEnd"`
	Date      string `json:"date"`
}

type taskRequest struct {
	Title           string         `json:"title"`
	StartTime       string         `json:"startTime"`
	EndTime         string         `json:"endTime"`
	Category        model.Category `json:"category"`
	Priority        model.Priority `json:"priority"`
	ReminderMinutes int            `json:"reminderMinutes"`
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

type reorderRequest struct {
	DraggedID   string `json:"draggedId"`
	DroppedOnID string `json:"droppedOnId"`
}

type planTomorrowRequest struct {
	CarryTaskIDs []string `json:"carryTaskIds"`
	Notes        string   `json:"notes"`
}

type settingsRequest struct {
	DayStart string         `json:"dayStart"`
	DayEnd   string         `json:"dayEnd"`
	Ringtone model.Ringtone `json:"ringtone"`
}

func (h *PlannerHandler) GetState(c *gin.Context) {
	tasks := h.planner.Tasks()
	completed := 0
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			completed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"view":        h.planner.View(),
		"currentTime": time.Now().Format("15:04"),
		"config":      h.planner.Config(),
		"taskCount":   len(tasks),
		"completed":   completed,
		"carryOver":   h.planner.CarryOver(),
	})
}

func (h *PlannerHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	tasks, err := h.planner.Generate(c.Request.Context(), req.UserInput, req.DayStart, req.DayEnd, req.Date)
	if err != nil {
		if errors.Is(err, service.ErrGeneration) {
			writeError(c, apperrors.BadGateway("generation_failed", "Failed to generate timetable."))
			return
		}
		writeError(c, apperrors.BadRequest("invalid_input", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *PlannerHandler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.planner.Tasks()})
}

func (h *PlannerHandler) AddTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	task, err := h.planner.AddTask(service.TaskInput{
		Title:           req.Title,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Category:        req.Category,
		Priority:        req.Priority,
		ReminderMinutes: req.ReminderMinutes,
	})
	if err != nil {
		writeError(c, apperrors.BadRequest("invalid_task", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *PlannerHandler) UpdateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	task, err := h.planner.UpdateTask(c.Param("id"), service.TaskInput{
		Title:           req.Title,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Category:        req.Category,
		Priority:        req.Priority,
		ReminderMinutes: req.ReminderMinutes,
	})
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeError(c, apperrors.NotFound("task_not_found", "task not found"))
			return
		}
		writeError(c, apperrors.BadRequest("invalid_task", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *PlannerHandler) ToggleStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	task, err := h.planner.ToggleStatus(c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeError(c, apperrors.NotFound("task_not_found", "task not found"))
			return
		}
		writeError(c, apperrors.BadRequest("invalid_status", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *PlannerHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	if err := h.planner.Reorder(req.DraggedID, req.DroppedOnID); err != nil {
		writeError(c, apperrors.NotFound("task_not_found", "task not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": h.planner.Tasks()})
}

func (h *PlannerHandler) RemoveCarryOver(c *gin.Context) {
	if err := h.planner.RemoveCarryOver(c.Param("id")); err != nil {
		writeError(c, apperrors.NotFound("task_not_found", "carry-over task not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"carryOver": h.planner.CarryOver()})
}

func (h *PlannerHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.planner.Alerts()})
}

func (h *PlannerHandler) DismissNotification(c *gin.Context) {
	h.planner.DismissAlert(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"dismissed": true})
}

func (h *PlannerHandler) CompleteFromNotification(c *gin.Context) {
	if err := h.planner.CompleteFromAlert(c.Param("id")); err != nil {
		writeError(c, apperrors.NotFound("notification_not_found", "notification not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": true})
}

// StartReview is the "generate reflection now" action. The generation
// outlives this request, so it runs on a background context.
func (h *PlannerHandler) StartReview(c *gin.Context) {
	started := h.planner.BeginDayReview(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"started": started})
}

func (h *PlannerHandler) GetReview(c *gin.Context) {
	review, loading := h.planner.ReviewState()
	c.JSON(http.StatusOK, gin.H{"loading": loading, "review": review})
}

func (h *PlannerHandler) PlanTomorrow(c *gin.Context) {
	var req planTomorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	h.planner.PlanTomorrow(req.CarryTaskIDs, req.Notes)
	c.JSON(http.StatusOK, gin.H{"view": h.planner.View(), "carryOver": h.planner.CarryOver()})
}

func (h *PlannerHandler) ResetDay(c *gin.Context) {
	h.planner.Reset()
	c.JSON(http.StatusOK, gin.H{"view": h.planner.View()})
}

func (h *PlannerHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.planner.History()})
}

func (h *PlannerHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"config": h.planner.Config()})
}

func (h *PlannerHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	cfg, err := h.planner.UpdateSettings(req.DayStart, req.DayEnd, req.Ringtone)
	if err != nil {
		writeError(c, apperrors.BadRequest("invalid_settings", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}
