package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/utils"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
)

var errInvalidWeekOffset = errors.New("weekOffset 必须是整数")

// weekOffset 缺省为 0，即本周
func (h *Handler) weekOffset(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("weekOffset")
	if raw == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidWeekOffset
	}
	if err := utils.ValidateWeekOffset(offset, h.config.Workload.MaxWeekOffset); err != nil {
		return 0, err
	}
	return offset, nil
}

// projection 优先读缓存；缓存出错只记录日志，然后重新计算
// 参考时刻取整到缓存的时间片，命中与否得到的结果都一样
func (h *Handler) projection(r *http.Request, weekOffset int) (*workload.Projection, error) {
	ref := h.cache.Reference(h.referenceDate())

	// 版本号必须在读取工单之前取得，计算期间的写入会让这次的结果只落在旧版本下
	version, err := h.cache.Version(r.Context())
	cacheable := err == nil
	if err != nil {
		slog.Warn("读取工作负载缓存版本失败", "error", err)
	}

	if cacheable {
		cached, err := h.cache.Get(r.Context(), version, ref, weekOffset)
		if err != nil {
			slog.Warn("读取工作负载缓存失败", "error", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	// 已删除的工单也要参与计算，它们会体现为待重新安排的数量
	orders, err := h.repository.GetAllWorkOrders(true)
	if err != nil {
		return nil, err
	}

	proj, err := h.planner.Compute(orders, weekOffset, ref)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := h.cache.Set(r.Context(), version, ref, weekOffset, proj); err != nil {
			slog.Warn("写入工作负载缓存失败", "error", err)
		}
	}

	return proj, nil
}

func (h *Handler) GetWorkload(w http.ResponseWriter, r *http.Request) {
	offset, err := h.weekOffset(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	proj, err := h.projection(r, offset)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工作负载成功", proj)
}

// GetUnscheduledOrders 待排队列和周偏移无关，固定使用本周的结果
func (h *Handler) GetUnscheduledOrders(w http.ResponseWriter, r *http.Request) {
	proj, err := h.projection(r, 0)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取待排工单成功", map[string]any{
		"unscheduledOrders": proj.UnscheduledOrders,
		"summaryCounts":     proj.SummaryCounts,
	})
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	offset, err := h.weekOffset(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	days := workload.BuildWeek(h.referenceDate(), offset)
	h.successResponse(w, r, "获取周信息成功", map[string]any{
		"weekDays":       days,
		"weekRangeLabel": workload.WeekRangeLabel(days),
	})
}
