package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/seed"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/utils"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// options 保存所有子命令共用的参数
type options struct {
	filePath    string
	weekOffset  int
	date        string
	baseline    string
	noBaseline  bool
	hoursPerDay float64
	queueOrder  string
	output      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "workloadctl",
		Short:         "离线计算技术员的周工作负载",
		Long:          `workloadctl 从 YAML 文件读取工单，按照和 API 相同的规则计算一周的容量网格和待排队列。`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.filePath, "file", "work_orders.yaml", "工单 YAML 文件")
	flags.IntVar(&opts.weekOffset, "week-offset", 0, "周偏移，0 为本周")
	flags.StringVar(&opts.date, "date", "", "参考日期 (YYYY-MM-DD)，默认今天")
	flags.StringVar(&opts.baseline, "baseline", "", "基线 YAML 文件，默认使用内置的演示基线")
	flags.BoolVar(&opts.noBaseline, "no-baseline", false, "不使用任何基线")
	flags.Float64Var(&opts.hoursPerDay, "hours-per-day", workload.DefaultHoursPerDay, "每个工作日的工时")
	flags.StringVar(&opts.queueOrder, "queue-order", "legacy", "待排队列的排序策略 (legacy|ranked)")
	flags.StringVar(&opts.output, "output", "text", "输出格式 (text|json)")
	rootCmd.MarkFlagsMutuallyExclusive("baseline", "no-baseline")

	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "输出一周的容量网格",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := opts.compute()
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), proj)
			}
			printProjection(cmd.OutOrStdout(), proj)
			return nil
		},
	}

	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "输出待排工单队列",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := opts.compute()
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), proj.UnscheduledOrders)
			}
			printQueue(cmd.OutOrStdout(), proj.UnscheduledOrders)
			return nil
		},
	}

	rootCmd.AddCommand(projectCmd, queueCmd)
	return rootCmd
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("执行失败", "error", err)
		os.Exit(1)
	}
}

func (o *options) compute() (*workload.Projection, error) {
	switch o.output {
	case "text", "json":
	default:
		return nil, fmt.Errorf("不支持的输出格式 %q", o.output)
	}

	orders, err := loadWorkOrders(o.filePath)
	if err != nil {
		return nil, err
	}

	ref, err := o.referenceDate()
	if err != nil {
		return nil, err
	}

	baseline := workload.Baseline{}
	if !o.noBaseline {
		baseline, err = seed.LoadBaseline(o.baseline)
		if err != nil {
			return nil, fmt.Errorf("无法加载基线 %q: %w", o.baseline, err)
		}
	}

	order, err := workload.QueueOrderByName(o.queueOrder)
	if err != nil {
		return nil, err
	}

	planner, err := workload.New(workload.Options{
		HoursPerDay: o.hoursPerDay,
		Baseline:    baseline,
		QueueOrder:  order,
	})
	if err != nil {
		return nil, err
	}

	return planner.Compute(orders, o.weekOffset, ref)
}

func (o *options) referenceDate() (time.Time, error) {
	if o.date == "" {
		return time.Now(), nil
	}

	ref, err := time.ParseInLocation(workload.DayKeyLayout, o.date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期 %q 的格式应为 YYYY-MM-DD", o.date)
	}
	return ref, nil
}

// loadWorkOrders 接受工单列表，或者带 workOrders 键的对象，并做和 API 相同的校验
func loadWorkOrders(path string) ([]*domain.WorkOrder, error) {
	orders, err := readWorkOrders(path)
	if err != nil {
		return nil, err
	}

	for i, wo := range orders {
		if err := utils.ValidateWorkOrder(wo); err != nil {
			return nil, fmt.Errorf("第 %d 个工单 %q 无效: %w", i+1, wo.ID, err)
		}
	}
	return orders, nil
}

func readWorkOrders(path string) ([]*domain.WorkOrder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %q: %w", path, err)
	}

	var list []*domain.WorkOrder
	if err := yaml.Unmarshal(data, &list); err == nil {
		return dropEmpty(list), nil
	}

	var doc struct {
		WorkOrders []*domain.WorkOrder `yaml:"workOrders"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("无法解析文件 %q: %w", path, err)
	}
	if doc.WorkOrders == nil {
		return nil, errors.New("文件中没有找到工单")
	}
	return dropEmpty(doc.WorkOrders), nil
}

// YAML 中的空列表项会被解析成 nil
func dropEmpty(orders []*domain.WorkOrder) []*domain.WorkOrder {
	result := make([]*domain.WorkOrder, 0, len(orders))
	for _, wo := range orders {
		if wo != nil {
			result = append(result, wo)
		}
	}
	return result
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

const (
	nameWidth = 18
	cellWidth = 11
)

var (
	overbooked = color.New(color.FgRed, color.Bold)
	nearlyFull = color.New(color.FgYellow)
	header     = color.New(color.Bold)
)

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// cell 先补齐宽度再着色，转义字符不会影响对齐
func cell(assigned, capacity, hoursLeft float64, utilization int) string {
	text := pad(fmt.Sprintf("%.1f/%.0f", assigned, capacity), cellWidth)
	switch {
	case hoursLeft < 0:
		return overbooked.Sprint(text)
	case capacity > 0 && utilization >= 80:
		return nearlyFull.Sprint(text)
	}
	return text
}

func printProjection(w io.Writer, proj *workload.Projection) {
	fmt.Fprintln(w, header.Sprint(proj.WeekRangeLabel))
	fmt.Fprintln(w)

	var sb strings.Builder
	sb.WriteString(pad("TECHNICIAN", nameWidth))
	for _, day := range proj.WeekDays {
		label := day.DayName + " " + day.DateLabel
		if day.IsToday {
			label += "*"
		}
		sb.WriteString(pad(label, cellWidth))
	}
	sb.WriteString(pad("WEEK", cellWidth))
	sb.WriteString("UTIL")
	fmt.Fprintln(w, header.Sprint(sb.String()))

	for _, row := range proj.UserRows {
		sb.Reset()
		sb.WriteString(pad(row.Name, nameWidth))
		for _, day := range row.Days {
			sb.WriteString(cell(day.AssignedHours, day.CapacityHours, day.HoursLeft, day.Utilization))
		}
		sb.WriteString(cell(row.AssignedHours, row.WeeklyCapacity, row.WeeklyCapacity-row.AssignedHours, row.Utilization))
		sb.WriteString(fmt.Sprintf("%d%%", row.Utilization))
		if row.PendingReschedules > 0 {
			sb.WriteString(fmt.Sprintf("  (%d 待重新安排)", row.PendingReschedules))
		}
		fmt.Fprintln(w, sb.String())
	}

	sb.Reset()
	sb.WriteString(pad("TOTAL", nameWidth))
	for _, total := range proj.DailyTotals {
		sb.WriteString(cell(total.AssignedHours, total.CapacityHours, total.HoursLeft, total.Utilization))
	}
	fmt.Fprintln(w, sb.String())

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Capacity: %.1fh  Assigned: %.1fh  Average utilization: %d%%\n",
		proj.TotalCapacity, proj.TotalAssigned, proj.AverageUtilization)

	c := proj.SummaryCounts
	fmt.Fprintf(w, "Overdue: %d  Due soon: %d  Open: %d  On hold: %d  In progress: %d  Unscheduled: %d\n",
		c.Overdue, c.DueSoon, c.Open, c.OnHold, c.InProgress, c.TotalUnscheduled)
}

func printQueue(w io.Writer, queue []workload.UnscheduledOrderCard) {
	fmt.Fprintln(w, header.Sprint(pad("ID", 14)+pad("PRIORITY", 10)+pad("DUE", 20)+pad("HOURS", 7)+"TITLE"))

	for _, card := range queue {
		due := pad(card.DueLabel, 20)
		if card.DaysUntil < 0 {
			due = overbooked.Sprint(due)
		}
		fmt.Fprintf(w, "%s%s%s%s%s\n",
			pad(card.ID, 14),
			pad(string(card.Priority), 10),
			due,
			pad(fmt.Sprintf("%.1f", card.EstimatedHours), 7),
			card.Title,
		)
	}
}
