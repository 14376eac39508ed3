package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
)

var requiredHeaders = []string{"title", "priority", "status", "dueDate"}

var ErrMissingHeader = errors.New("CSV 缺少必要的列")

type WorkOrderCreator interface {
	CreateWorkOrders(orders []*domain.WorkOrder) error
}

// ParseWorkOrdersCSV 第一行为表头，列的顺序不限；assignee 为空的工单不指派
func ParseWorkOrdersCSV(r io.Reader) ([]*domain.WorkOrder, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, h)
		}
	}

	orders := make([]*domain.WorkOrder, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		line++

		record := make(map[string]string)
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		wo, err := workOrderFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		orders = append(orders, wo)
	}

	return orders, nil
}

func workOrderFromRecord(record map[string]string) (*domain.WorkOrder, error) {
	if record["title"] == "" {
		return nil, errors.New("标题不能为空")
	}

	wo := &domain.WorkOrder{
		ID:          record["id"],
		Title:       record["title"],
		Description: record["description"],
		Priority:    domain.Priority(record["priority"]),
		Status:      domain.Status(record["status"]),
		DueDate:     record["dueDate"],
		Asset:       record["asset"],
		Location:    record["location"],
	}

	if raw := record["estimatedHours"]; raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours < 0 {
			return nil, fmt.Errorf("预计工时 %q 无效", raw)
		}
		wo.EstimatedHours = &hours
	}

	if name := record["assignee"]; name != "" {
		wo.AssignedTo = &domain.Assignee{
			Name:   name,
			Team:   record["team"],
			Avatar: record["avatar"],
		}
	}

	wo.IsCompleted = wo.Status.IsDone()

	return wo, nil
}

// SeedFromCSV 读取 CSV 并在一个事务中插入所有工单
func SeedFromCSV(repo WorkOrderCreator, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	orders, err := ParseWorkOrdersCSV(file)
	if err != nil {
		return 0, err
	}

	if err := repo.CreateWorkOrders(orders); err != nil {
		return 0, err
	}

	slog.Info("已导入工单", "path", path, "count", len(orders))
	return len(orders), nil
}
