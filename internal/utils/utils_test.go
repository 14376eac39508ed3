package utils

import (
	"math"
	"testing"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAvatarFromChineseName(t *testing.T) {
	assert.Equal(t, "WW", GenerateAvatarFromChineseName("王伟"))
	assert.Equal(t, "LXM", GenerateAvatarFromChineseName("李小明"))
	assert.Equal(t, "", GenerateAvatarFromChineseName(""))
}

func TestGenerateRandomWorkOrder(t *testing.T) {
	technicians := []domain.Assignee{GenerateRandomTechnician(), GenerateRandomTechnician()}

	orders := make([]*domain.WorkOrder, 0, 50)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		wo := GenerateRandomWorkOrder(technicians)
		require.NotEmpty(t, wo.ID)
		assert.False(t, seen[wo.ID])
		seen[wo.ID] = true
		assert.NotEmpty(t, wo.Title)
		assert.NoError(t, ValidateWorkOrder(wo))
		orders = append(orders, wo)
	}

	_, err := workload.Compute(orders, 0, time.Now())
	assert.NoError(t, err)
}

func TestValidateWorkOrder(t *testing.T) {
	negative := -1.0
	nan := math.NaN()
	zero := 0.0

	tests := []struct {
		name    string
		wo      *domain.WorkOrder
		wantErr bool
	}{
		{"minimal", &domain.WorkOrder{Title: "A"}, false},
		{"zero hours", &domain.WorkOrder{Title: "A", EstimatedHours: &zero}, false},
		{"negative hours", &domain.WorkOrder{Title: "A", EstimatedHours: &negative}, true},
		{"nan hours", &domain.WorkOrder{Title: "A", EstimatedHours: &nan}, true},
		{"team without name", &domain.WorkOrder{Title: "A", AssignedTo: &domain.Assignee{Team: "HVAC"}}, true},
		{"reserved name", &domain.WorkOrder{Title: "A", AssignedTo: &domain.Assignee{Name: domain.UnassignedName}}, true},
		{"assigned", &domain.WorkOrder{Title: "A", AssignedTo: &domain.Assignee{Name: "Bob", Team: "HVAC"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkOrder(tt.wo)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWeekOffset(t *testing.T) {
	assert.NoError(t, ValidateWeekOffset(0, 52))
	assert.NoError(t, ValidateWeekOffset(-52, 52))
	assert.NoError(t, ValidateWeekOffset(52, 52))
	assert.Error(t, ValidateWeekOffset(53, 52))
	assert.Error(t, ValidateWeekOffset(-53, 52))
}
