package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/events"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

type assigneeRequest struct {
	Name   string `json:"name" validate:"max=100"`
	Team   string `json:"team" validate:"max=100"`
	Avatar string `json:"avatar" validate:"max=16"`
}

func (a *assigneeRequest) toDomain() *domain.Assignee {
	if a == nil || a.Name == "" {
		return nil
	}
	return &domain.Assignee{Name: a.Name, Team: a.Team, Avatar: a.Avatar}
}

func (h *Handler) GetAllWorkOrders(w http.ResponseWriter, r *http.Request) {
	includeDeleted := false
	if raw := r.URL.Query().Get("includeDeleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.errorResponse(w, r, "includeDeleted 必须是布尔值")
			return
		}
		includeDeleted = v
	}

	orders, err := h.repository.GetAllWorkOrders(includeDeleted)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工单列表成功", orders)
}

func (h *Handler) CreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID             string           `json:"id" validate:"omitempty,max=64"`
		Title          string           `json:"title" validate:"required,max=200"`
		Description    string           `json:"description" validate:"max=2000"`
		Priority       string           `json:"priority" validate:"max=32"`
		Status         string           `json:"status" validate:"max=32"`
		DueDate        string           `json:"dueDate" validate:"max=64"`
		EstimatedHours *float64         `json:"estimatedHours" validate:"omitempty,gte=0"`
		AssignedTo     *assigneeRequest `json:"assignedTo"`
		Asset          string           `json:"asset" validate:"max=100"`
		Location       string           `json:"location" validate:"max=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	wo := &domain.WorkOrder{
		ID:             req.ID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.Priority(req.Priority),
		Status:         domain.Status(req.Status),
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		AssignedTo:     req.AssignedTo.toDomain(),
		Asset:          req.Asset,
		Location:       req.Location,
	}
	if wo.Status == "" {
		wo.Status = domain.StatusOpen
	}
	wo.IsCompleted = wo.Status.IsDone()
	if err := utils.ValidateWorkOrder(wo); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateWorkOrder(wo); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "work_orders_pkey":
				h.badRequest(w, r, errors.New("工单ID已存在"))
			case "work_orders_estimated_hours_check":
				h.badRequest(w, r, errors.New("预计工时必须是非负数"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.workOrdersChanged(r.Context(), domain.WorkOrderCreated, wo.ID)
	h.successResponse(w, r, "工单创建成功", wo)
}

func (h *Handler) GetWorkOrder(w http.ResponseWriter, r *http.Request) {
	wo := r.Context().Value(WorkOrderCtx).(*domain.WorkOrder)
	h.successResponse(w, r, "获取工单成功", wo)
}

func (h *Handler) UpdateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          *string          `json:"title" validate:"omitempty,min=1,max=200"`
		Description    *string          `json:"description" validate:"omitempty,max=2000"`
		Priority       *string          `json:"priority" validate:"omitempty,max=32"`
		Status         *string          `json:"status" validate:"omitempty,max=32"`
		DueDate        *string          `json:"dueDate" validate:"omitempty,max=64"`
		EstimatedHours *float64         `json:"estimatedHours" validate:"omitempty,gte=0"`
		AssignedTo     *assigneeRequest `json:"assignedTo"` // name 为空表示取消指派
		Asset          *string          `json:"asset" validate:"omitempty,max=100"`
		Location       *string          `json:"location" validate:"omitempty,max=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	wo := r.Context().Value(WorkOrderCtx).(*domain.WorkOrder)
	if wo.WasDeleted {
		h.errorResponse(w, r, "工单已删除")
		return
	}

	if req.Title != nil {
		wo.Title = *req.Title
	}
	if req.Description != nil {
		wo.Description = *req.Description
	}
	if req.Priority != nil {
		wo.Priority = domain.Priority(*req.Priority)
	}
	if req.Status != nil {
		// 完成状态跟随 status，改回未完成的状态即重新打开工单
		wo.Status = domain.Status(*req.Status)
		wo.IsCompleted = wo.Status.IsDone()
	}
	if req.DueDate != nil {
		wo.DueDate = *req.DueDate
	}
	if req.EstimatedHours != nil {
		wo.EstimatedHours = req.EstimatedHours
	}
	if req.AssignedTo != nil {
		wo.AssignedTo = req.AssignedTo.toDomain()
	}
	if req.Asset != nil {
		wo.Asset = *req.Asset
	}
	if req.Location != nil {
		wo.Location = *req.Location
	}

	if err := utils.ValidateWorkOrder(wo); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateWorkOrder(wo); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 版本号不匹配，说明在此期间工单被别人修改过
			h.errorResponse(w, r, "工单已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.workOrdersChanged(r.Context(), domain.WorkOrderUpdated, wo.ID)
	h.successResponse(w, r, "工单更新成功", wo)
}

func (h *Handler) DeleteWorkOrder(w http.ResponseWriter, r *http.Request) {
	wo := r.Context().Value(WorkOrderCtx).(*domain.WorkOrder)

	if err := h.repository.SoftDeleteWorkOrder(wo.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "工单已删除")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.workOrdersChanged(r.Context(), domain.WorkOrderDeleted, wo.ID)
	h.successResponse(w, r, "工单删除成功", nil)
}

func (h *Handler) CompleteWorkOrder(w http.ResponseWriter, r *http.Request) {
	wo := r.Context().Value(WorkOrderCtx).(*domain.WorkOrder)
	if wo.IsCompleted {
		h.errorResponse(w, r, "工单已完成")
		return
	}

	if err := h.repository.CompleteWorkOrder(wo.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "工单不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.workOrdersChanged(r.Context(), domain.WorkOrderCompleted, wo.ID)
	h.successResponse(w, r, "工单已完成", nil)
}

// workOrdersChanged 让缓存失效并通知 worker，写入已经成功，这里的失败只记录日志
func (h *Handler) workOrdersChanged(ctx context.Context, typ domain.WorkOrderEventType, id string) {
	if err := h.cache.Bump(ctx); err != nil {
		slog.Warn("无法使工作负载缓存失效", "error", err)
	}

	if err := h.publisher.Publish(ctx, events.NewEvent(typ, id)); err != nil {
		slog.Warn("无法发布工单事件", "type", typ, "id", id, "error", err)
	}
}
