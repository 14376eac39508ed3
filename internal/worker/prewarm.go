package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/events"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
	"github.com/sourcegraph/conc/pool"
)

// DefaultOffsets 是上一周、本周和下一周，前端最常访问的三个视图
var DefaultOffsets = []int{-1, 0, 1}

type WorkOrderSource interface {
	GetAllWorkOrders(includeDeleted bool) ([]*domain.WorkOrder, error)
}

// ProjectionStore 由 cache.WorkloadCache 实现
type ProjectionStore interface {
	Reference(t time.Time) time.Time
	Version(ctx context.Context) (int64, error)
	Set(ctx context.Context, version int64, referenceDate time.Time, weekOffset int, proj *workload.Projection) error
}

// MalformedEventError 表示消息本身有问题，重新入队也不会成功
type MalformedEventError struct {
	Err error
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("无法解析工单事件: %v", e.Err)
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}

type Prewarmer struct {
	source   WorkOrderSource
	planner  *workload.Planner
	store    ProjectionStore
	location *time.Location
	offsets  []int
	now      func() time.Time
}

func NewPrewarmer(source WorkOrderSource, planner *workload.Planner, store ProjectionStore, loc *time.Location) *Prewarmer {
	return &Prewarmer{
		source:   source,
		planner:  planner,
		store:    store,
		location: loc,
		offsets:  DefaultOffsets,
		now:      time.Now,
	}
}

// Handle 处理一条工单事件消息
func (p *Prewarmer) Handle(ctx context.Context, body []byte) error {
	evt, err := events.Decode(body)
	if err != nil {
		return &MalformedEventError{Err: err}
	}

	slog.Debug("收到工单事件", "type", evt.Type, "id", evt.WorkOrderID)
	return p.Prewarm(ctx)
}

// Prewarm 重新读取工单，并发计算各个周偏移的视图写入缓存
func (p *Prewarmer) Prewarm(ctx context.Context) error {
	// 先取版本号再读工单，和 API 的读取顺序一致
	version, err := p.store.Version(ctx)
	if err != nil {
		return err
	}

	orders, err := p.source.GetAllWorkOrders(true)
	if err != nil {
		return err
	}

	ref := p.store.Reference(p.now().In(p.location))

	// 任何一个偏移失败都取消其余的计算，整条消息稍后重新入队
	pl := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError().WithMaxGoroutines(len(p.offsets))
	for _, offset := range p.offsets {
		pl.Go(func(ctx context.Context) error {
			proj, err := p.planner.Compute(orders, offset, ref)
			if err != nil {
				return err
			}
			return p.store.Set(ctx, version, ref, offset, proj)
		})
	}

	if err := pl.Wait(); err != nil {
		return err
	}

	slog.Info("已预热工作负载缓存", "version", version, "offsets", p.offsets, "workOrders", len(orders))
	return nil
}
