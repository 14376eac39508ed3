package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/oklog/ulid/v2"
)

const workOrderColumns = `
	id, title, description, priority, status, due_date, estimated_hours,
	assignee_name, assignee_team, assignee_avatar, asset, location,
	is_completed, was_deleted, created_at, version
`

type scanner interface {
	Scan(dest ...any) error
}

// scanWorkOrder 按 workOrderColumns 的顺序读取一行
func scanWorkOrder(s scanner) (*domain.WorkOrder, error) {
	wo := &domain.WorkOrder{}

	var (
		estimatedHours sql.NullFloat64
		assigneeName   sql.NullString
		assigneeTeam   sql.NullString
		assigneeAvatar sql.NullString
	)

	dst := []any{
		&wo.ID, &wo.Title, &wo.Description, &wo.Priority, &wo.Status, &wo.DueDate, &estimatedHours,
		&assigneeName, &assigneeTeam, &assigneeAvatar, &wo.Asset, &wo.Location,
		&wo.IsCompleted, &wo.WasDeleted, &wo.CreatedAt, &wo.Version,
	}
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}

	if estimatedHours.Valid {
		wo.EstimatedHours = &estimatedHours.Float64
	}
	if assigneeName.Valid && assigneeName.String != "" {
		wo.AssignedTo = &domain.Assignee{
			Name:   assigneeName.String,
			Team:   assigneeTeam.String,
			Avatar: assigneeAvatar.String,
		}
	}

	return wo, nil
}

func nullableHours(h *float64) sql.NullFloat64 {
	if h == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *h, Valid: true}
}

func nullableAssignee(a *domain.Assignee) (name, team, avatar sql.NullString) {
	if a == nil || a.Name == "" {
		return
	}
	return sql.NullString{String: a.Name, Valid: true},
		sql.NullString{String: a.Team, Valid: a.Team != ""},
		sql.NullString{String: a.Avatar, Valid: a.Avatar != ""}
}

// GetAllWorkOrders 按创建顺序返回工单，排程的结果依赖这个顺序
func (r *Repository) GetAllWorkOrders(includeDeleted bool) ([]*domain.WorkOrder, error) {
	query := `SELECT` + workOrderColumns + `FROM work_orders`
	if !includeDeleted {
		query += ` WHERE was_deleted = FALSE`
	}
	query += ` ORDER BY created_at, id`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.WorkOrder, 0)
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, wo)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *Repository) GetWorkOrderByID(id string) (*domain.WorkOrder, error) {
	query := `SELECT` + workOrderColumns + `FROM work_orders WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanWorkOrder(r.dbpool.QueryRowContext(ctx, query, id))
}

// CreateWorkOrder 在 ID 为空时生成一个 ULID
func (r *Repository) CreateWorkOrder(wo *domain.WorkOrder) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.insertWorkOrder(ctx, r.dbpool, wo)
}

// CreateWorkOrders 在一个事务中批量插入，任何一条失败都会整体回滚
func (r *Repository) CreateWorkOrders(orders []*domain.WorkOrder) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, wo := range orders {
		if err := r.insertWorkOrder(ctx, tx, wo); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) insertWorkOrder(ctx context.Context, db queryRower, wo *domain.WorkOrder) error {
	if wo.ID == "" {
		wo.ID = ulid.Make().String()
	}

	query := `
		INSERT INTO work_orders (
			id, title, description, priority, status, due_date, estimated_hours,
			assignee_name, assignee_team, assignee_avatar, asset, location, is_completed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING was_deleted, created_at, version
	`

	name, team, avatar := nullableAssignee(wo.AssignedTo)
	args := []any{
		wo.ID, wo.Title, wo.Description, wo.Priority, wo.Status, wo.DueDate, nullableHours(wo.EstimatedHours),
		name, team, avatar, wo.Asset, wo.Location, wo.IsCompleted,
	}
	return db.QueryRowContext(ctx, query, args...).Scan(&wo.WasDeleted, &wo.CreatedAt, &wo.Version)
}

// UpdateWorkOrder 使用乐观锁，版本号不匹配时返回 sql.ErrNoRows
func (r *Repository) UpdateWorkOrder(wo *domain.WorkOrder) error {
	query := `
		UPDATE work_orders
		SET
			title = $1,
			description = $2,
			priority = $3,
			status = $4,
			due_date = $5,
			estimated_hours = $6,
			assignee_name = $7,
			assignee_team = $8,
			assignee_avatar = $9,
			asset = $10,
			location = $11,
			is_completed = $12,
			version = version + 1
		WHERE id = $13 AND version = $14
		RETURNING is_completed, was_deleted, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	name, team, avatar := nullableAssignee(wo.AssignedTo)
	args := []any{
		wo.Title, wo.Description, wo.Priority, wo.Status, wo.DueDate, nullableHours(wo.EstimatedHours),
		name, team, avatar, wo.Asset, wo.Location, wo.IsCompleted, wo.ID, wo.Version,
	}
	dst := []any{&wo.IsCompleted, &wo.WasDeleted, &wo.CreatedAt, &wo.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// SoftDeleteWorkOrder 只做标记，排程仍然会把它算作待重新安排的工单
func (r *Repository) SoftDeleteWorkOrder(id string) error {
	query := `
		UPDATE work_orders
		SET was_deleted = TRUE, version = version + 1
		WHERE id = $1 AND was_deleted = FALSE
	`

	return r.execAffectingOne(query, id)
}

func (r *Repository) CompleteWorkOrder(id string) error {
	query := `
		UPDATE work_orders
		SET is_completed = TRUE, status = $1, version = version + 1
		WHERE id = $2
	`

	return r.execAffectingOne(query, domain.StatusCompleted, id)
}

// execAffectingOne 在没有任何行被修改时返回 sql.ErrNoRows
func (r *Repository) execAffectingOne(query string, args ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
