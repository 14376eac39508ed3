package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/config"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/rs/cors"
)

// WorkOrderStore 由 repository.Repository 实现
type WorkOrderStore interface {
	GetAllWorkOrders(includeDeleted bool) ([]*domain.WorkOrder, error)
	GetWorkOrderByID(id string) (*domain.WorkOrder, error)
	CreateWorkOrder(wo *domain.WorkOrder) error
	UpdateWorkOrder(wo *domain.WorkOrder) error
	SoftDeleteWorkOrder(id string) error
	CompleteWorkOrder(id string) error
}

// ProjectionCache 由 cache.WorkloadCache 实现，Get 未命中时返回 nil, nil
type ProjectionCache interface {
	Reference(t time.Time) time.Time
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, version int64, referenceDate time.Time, weekOffset int) (*workload.Projection, error)
	Set(ctx context.Context, version int64, referenceDate time.Time, weekOffset int, proj *workload.Projection) error
	Bump(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, evt domain.WorkOrderEvent) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository WorkOrderStore
	translator ut.Translator
	planner    *workload.Planner
	cache      ProjectionCache
	publisher  EventPublisher
	location   *time.Location
	now        func() time.Time

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo WorkOrderStore, planner *workload.Planner, cache ProjectionCache, publisher EventPublisher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		planner:    planner,
		cache:      cache,
		publisher:  publisher,
		location:   loc,
		now:        time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

// referenceDate 是计算 "今天" 和截止天数时使用的时刻
func (h *Handler) referenceDate() time.Time {
	return h.now().In(h.location)
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.New(cors.Options{
		AllowedOrigins:   h.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	h.Mux.Get("/healthz", h.Healthz)

	// 以下 API 需要携带外部签发的令牌
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/work-orders", func(r chi.Router) {
			r.Get("/", h.GetAllWorkOrders)
			r.With(h.RequiredRole([]domain.Role{domain.RolePlanner, domain.RoleAdmin})).Post("/", h.CreateWorkOrder)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.workOrder)
				r.Get("/", h.GetWorkOrder)
				r.With(h.RequiredRole([]domain.Role{domain.RolePlanner, domain.RoleAdmin})).Patch("/", h.UpdateWorkOrder)
				r.With(h.RequiredRole([]domain.Role{domain.RolePlanner, domain.RoleAdmin})).Delete("/", h.DeleteWorkOrder)
				r.Post("/complete", h.CompleteWorkOrder) // 技术员也可以完成工单
			})
		})

		r.Route("/workload", func(r chi.Router) {
			r.Get("/", h.GetWorkload)
			r.Get("/unscheduled", h.GetUnscheduledOrders)
			r.Get("/week", h.GetWeek)
		})
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", nil)
}
