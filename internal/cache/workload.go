package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/config"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
	"github.com/redis/go-redis/v9"
)

const versionKey = "workload:version"

// WorkloadCache 缓存计算好的周视图
// 工单有任何写入时递增版本号，旧版本的键不再被读取，等待过期即可
type WorkloadCache struct {
	rdb        redis.Cmdable
	expiration time.Duration
	opTimeout  time.Duration
	bucket     time.Duration
}

func NewWorkloadCache(cfg *config.Config, rdb redis.Cmdable) *WorkloadCache {
	expiration := time.Duration(cfg.Workload.CacheExpiration) * time.Second

	bucket := expiration
	if bucket < time.Minute {
		bucket = time.Minute
	}

	return &WorkloadCache{
		rdb:        rdb,
		expiration: expiration,
		opTimeout:  time.Duration(cfg.Redis.OperationExpiration) * time.Second,
		bucket:     bucket,
	}
}

// Reference 把参考时刻向下取整到缓存的时间片，计算和缓存键都使用取整后的时刻，
// 同一个键下的视图一定是用同一个时刻算出来的。时间片从当天零点开始划分，不会跨到前一天
func (c *WorkloadCache) Reference(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.Add(t.Sub(day).Truncate(c.bucket))
}

// Key 形如 workload:3:2026-10-14T15:30:00Z:-1
func Key(version int64, referenceDate time.Time, weekOffset int) string {
	return fmt.Sprintf("workload:%d:%s:%s", version, referenceDate.Format(time.RFC3339), strconv.Itoa(weekOffset))
}

// Version 返回当前的数据版本号。调用方应在读取工单之前取得版本号，
// 并把同一个版本号传给 Get 和 Set，这样在计算期间发生的写入不会让旧数据挂到新版本下
func (c *WorkloadCache) Version(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	version, err := c.rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

func (c *WorkloadCache) Bump(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.rdb.Incr(ctx, versionKey).Err()
}

// Get 在未命中时返回 nil, nil
func (c *WorkloadCache) Get(ctx context.Context, version int64, referenceDate time.Time, weekOffset int) (*workload.Projection, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, Key(version, referenceDate, weekOffset)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	proj := &workload.Projection{}
	if err := json.Unmarshal(data, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

func (c *WorkloadCache) Set(ctx context.Context, version int64, referenceDate time.Time, weekOffset int, proj *workload.Projection) error {
	data, err := json.Marshal(proj)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.rdb.Set(ctx, Key(version, referenceDate, weekOffset), data, c.expiration).Err()
}
