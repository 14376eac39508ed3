package workload

const DefaultHoursPerDay = 7.0

// Capacity 只和日期有关，和技术员无关：所有人共享同一个每日额度，周末为 0
type Capacity struct {
	HoursPerDay float64
}

func (c Capacity) ForDay(day WeekDay) float64 {
	if day.IsWeekend {
		return 0
	}
	return c.HoursPerDay
}

func (c Capacity) Weekly(days []WeekDay) float64 {
	total := 0.0
	for _, day := range days {
		total += c.ForDay(day)
	}
	return total
}
