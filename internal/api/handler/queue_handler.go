package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LessonsQueue/QueueManager/internal/api/metrics"
	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/ports"
)

type QueueHandler struct {
	queueService ports.QueueService
}

func NewQueueHandler(queueService ports.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

type createQueueRequest struct {
	LabID  string `json:"lab_id" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING SKIPPED COMPLETED"`
}

// Create creates a queue for a lab. Admin-only; status defaults to PENDING.
//
// @Summary      Create a queue
// @Tags         queues
// @Accept       json
// @Produce      json
// @Param        body  body      createQueueRequest  true  "Queue definition"
// @Success      201   {object}  domain.Queue
// @Failure      403   {object}  errorResponse
// @Router       /queues [post]
func (h *QueueHandler) Create(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createQueueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	queue, err := h.queueService.CreateQueue(c.Request().Context(), req.LabID, requesterID, domain.QueueStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, queue)
}

// FindByID retrieves a queue by id. Public.
//
// @Summary      Find queue by id
// @Tags         queues
// @Produce      json
// @Param        id   path      string  true  "Queue id"
// @Success      200  {object}  domain.Queue
// @Failure      404  {object}  errorResponse
// @Router       /queues/{id} [get]
func (h *QueueHandler) FindByID(c echo.Context) error {
	queue, err := h.queueService.FindQueueByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queue)
}

// FindByLab retrieves the queue attached to a lab. Lookup never creates.
//
// @Summary      Find queue by lab
// @Tags         queues
// @Produce      json
// @Param        labId  path      string  true  "Lab id"
// @Success      200    {object}  domain.Queue
// @Failure      404    {object}  errorResponse
// @Router       /labs/{labId}/queue [get]
func (h *QueueHandler) FindByLab(c echo.Context) error {
	queue, err := h.queueService.FindQueueByLabID(c.Request().Context(), c.Param("labId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queue)
}

// Delete removes a queue and its members. Admins or the creator.
//
// @Summary      Delete a queue
// @Tags         queues
// @Produce      json
// @Param        id   path      string  true  "Queue id"
// @Success      200  {object}  domain.Queue
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /queues/{id} [delete]
func (h *QueueHandler) Delete(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	queue, err := h.queueService.DeleteQueueByID(c.Request().Context(), c.Param("id"), requesterID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queue)
}

// Join adds the caller to a PENDING queue.
//
// @Summary      Join a queue
// @Tags         queues
// @Produce      json
// @Param        id   path      string  true  "Queue id"
// @Success      201  {object}  domain.UserQueue
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /queues/{id}/join [post]
func (h *QueueHandler) Join(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	member, err := h.queueService.JoinQueue(c.Request().Context(), c.Param("id"), requesterID)
	if err != nil {
		metrics.QueueJoinsTotal.WithLabelValues(joinResult(err)).Inc()
		return err
	}

	metrics.QueueJoinsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, member)
}

// Leave removes the caller's own membership.
//
// @Summary      Leave a queue
// @Tags         queues
// @Produce      json
// @Param        id   path      string  true  "Queue id"
// @Success      200  {object}  domain.UserQueue
// @Failure      404  {object}  errorResponse
// @Router       /queues/{id}/leave [delete]
func (h *QueueHandler) Leave(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	member, err := h.queueService.LeaveQueue(c.Request().Context(), c.Param("id"), requesterID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// RemoveUser forcibly removes a member. Admin-only.
//
// @Summary      Remove a user from a queue
// @Tags         queues
// @Produce      json
// @Param        queueId  path      string  true  "Queue id"
// @Param        userId   path      string  true  "Target user id"
// @Success      200      {object}  domain.UserQueue
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /queues/{queueId}/remove/{userId} [delete]
func (h *QueueHandler) RemoveUser(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	member, err := h.queueService.RemoveUserFromQueue(c.Request().Context(), c.Param("queueId"), requesterID, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// ResumeStatus force-resets a queue to PENDING. Admin-only.
//
// @Summary      Resume queue status
// @Tags         queues
// @Produce      json
// @Param        id   path      string  true  "Queue id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /queues/{id}/resume-status [patch]
func (h *QueueHandler) ResumeStatus(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	queueID := c.Param("id")
	if _, err := h.queueService.ResumeQueueStatus(c.Request().Context(), queueID, requesterID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "queue " + queueID + " has changed its status to PENDING"})
}

func joinResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrQueueNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrQueueClosed):
		return "closed"
	case errors.Is(err, domain.ErrAlreadyInQueue):
		return "duplicate"
	default:
		return "error"
	}
}
