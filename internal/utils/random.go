package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
	"github.com/oklog/ulid/v2"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// GenerateAvatarFromChineseName 取每个字拼音的首字母，例如 "王伟" -> "WW"
func GenerateAvatarFromChineseName(chineseName string) string {
	avatar := ""
	for _, py := range pinyin.LazyConvert(chineseName, nil) {
		if py != "" {
			avatar += strings.ToUpper(py[:1])
		}
	}
	return avatar
}

var teams = []string{"Mechanical", "Electrical", "Plumbing", "Facilities", "HVAC"}

func GenerateRandomTechnician() domain.Assignee {
	name := GenerateRandomChineseName()
	return domain.Assignee{
		Name:   name,
		Team:   teams[rand.Intn(len(teams))],
		Avatar: GenerateAvatarFromChineseName(name),
	}
}

var priorities = []domain.Priority{
	domain.PriorityHigh,
	domain.PriorityMedium,
	domain.PriorityLow,
	domain.PriorityDaily,
}

var statuses = []domain.Status{
	domain.StatusOpen,
	domain.StatusOpen,
	domain.StatusOnHold,
	domain.StatusInProgress,
	domain.StatusDone,
}

func GenerateRandomPriority() domain.Priority {
	return priorities[rand.Intn(len(priorities))]
}

func GenerateRandomStatus() domain.Status {
	return statuses[rand.Intn(len(statuses))]
}

var duePhrases = []string{"today", "tomorrow", "yesterday", "", "next sprint", "ASAP"}

// GenerateRandomDueDate 混合生成各种格式的截止日期，包括排程无法识别的文本
func GenerateRandomDueDate() string {
	switch rand.Intn(3) {
	case 0:
		return duePhrases[rand.Intn(len(duePhrases))]
	case 1:
		return fmt.Sprintf("in %d days", rand.Intn(14))
	default:
		return fmt.Sprintf("2026-%02d-%02d", rand.Intn(12)+1, rand.Intn(28)+1)
	}
}

var tasks = []string{"检修", "更换", "巡检", "清洁", "校准", "润滑"}
var assets = []string{"水泵", "空压机", "冷却塔", "电梯", "发电机", "配电柜", "锅炉"}

// GenerateRandomWorkOrder 从给定的技术员中随机指派，有一定概率不指派
func GenerateRandomWorkOrder(technicians []domain.Assignee) *domain.WorkOrder {
	asset := assets[rand.Intn(len(assets))]
	wo := &domain.WorkOrder{
		ID:       ulid.Make().String(),
		Title:    tasks[rand.Intn(len(tasks))] + asset,
		Priority: GenerateRandomPriority(),
		Status:   GenerateRandomStatus(),
		DueDate:  GenerateRandomDueDate(),
		Asset:    fmt.Sprintf("%s-%02d", strings.ToUpper(strings.Join(pinyin.LazyConvert(asset, nil), "")), rand.Intn(20)+1),
		Location: fmt.Sprintf("%d 号楼", rand.Intn(5)+1),
	}

	if rand.Intn(2) == 0 {
		hours := float64(rand.Intn(16)+1) * 0.5
		wo.EstimatedHours = &hours
	}

	if len(technicians) > 0 && rand.Intn(5) != 0 {
		assignee := technicians[rand.Intn(len(technicians))]
		wo.AssignedTo = &assignee
	}

	wo.IsCompleted = wo.Status.IsDone()

	return wo
}
