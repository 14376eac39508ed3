package utils

import (
	"errors"
	"fmt"
	"math"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
)

// ValidateWorkOrder 检查 validator 标签表达不了的约束
func ValidateWorkOrder(wo *domain.WorkOrder) error {
	if wo.EstimatedHours != nil {
		h := *wo.EstimatedHours
		if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
			return errors.New("预计工时必须是非负数")
		}
	}

	if wo.AssignedTo != nil && wo.AssignedTo.Name == "" && (wo.AssignedTo.Team != "" || wo.AssignedTo.Avatar != "") {
		return errors.New("指派了团队或头像时必须填写技术员姓名")
	}

	if wo.AssignedTo != nil && wo.AssignedTo.Name == domain.UnassignedName {
		return fmt.Errorf("技术员姓名不能是 %s", domain.UnassignedName)
	}

	return nil
}

func ValidateWeekOffset(offset, maxOffset int) error {
	if offset < -maxOffset || offset > maxOffset {
		return fmt.Errorf("weekOffset 必须在 %d 到 %d 之间", -maxOffset, maxOffset)
	}
	return nil
}
