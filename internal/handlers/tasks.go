package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/models"
	"task-manager-backend/internal/services"

	"github.com/gorilla/mux"
)

const msgTaskNotFound = "Task not found or unauthorized"

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(r)
	if !ok {
		sendError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var req models.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		sendError(w, http.StatusBadRequest, "Title required")
		return
	}

	task, err := h.tasks.Create(r.Context(), claims.UserID, req.Title, req.Description)
	if err != nil {
		log.Printf("create task: %v", err)
		sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	sendJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(r)
	if !ok {
		sendError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	tasks, err := h.tasks.List(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("list tasks: %v", err)
		sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	sendJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	claims, taskID, ok := taskRequest(w, r)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		sendError(w, http.StatusBadRequest, "Title required")
		return
	}

	err := h.tasks.Update(r.Context(), taskID, claims.UserID, req.Title, req.Description, req.Completed)
	if !h.handleTaskError(w, "update task", err) {
		return
	}

	sendJSON(w, http.StatusOK, models.TaskResult{Success: true})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	claims, taskID, ok := taskRequest(w, r)
	if !ok {
		return
	}

	err := h.tasks.Delete(r.Context(), taskID, claims.UserID)
	if !h.handleTaskError(w, "delete task", err) {
		return
	}

	sendJSON(w, http.StatusOK, models.TaskResult{Success: true})
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	claims, taskID, ok := taskRequest(w, r)
	if !ok {
		return
	}

	completed, err := h.tasks.Toggle(r.Context(), taskID, claims.UserID)
	if !h.handleTaskError(w, "toggle task", err) {
		return
	}

	sendJSON(w, http.StatusOK, models.TaskResult{Success: true, Completed: &completed})
}

// handleTaskError writes the response for a failed ownership-scoped call and
// reports whether the caller may continue.
func (h *TaskHandler) handleTaskError(w http.ResponseWriter, op string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, models.ErrTaskNotFound):
		sendJSON(w, http.StatusNotFound, models.TaskResult{Error: msgTaskNotFound})
	default:
		log.Printf("%s: %v", op, err)
		sendError(w, http.StatusInternalServerError, msgInternal)
	}
	return false
}

// taskRequest pulls the caller and the {id} path variable out of r.
func taskRequest(w http.ResponseWriter, r *http.Request) (*auth.Claims, int, bool) {
	claims, ok := getClaims(r)
	if !ok {
		sendError(w, http.StatusUnauthorized, "Access token required")
		return nil, 0, false
	}

	// ids are int4 in the database; anything wider cannot name a task.
	taskID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		sendJSON(w, http.StatusNotFound, models.TaskResult{Error: msgTaskNotFound})
		return nil, 0, false
	}
	return claims, int(taskID), true
}
