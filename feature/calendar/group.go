package calendar

import (
	"iter"
	"sort"
)

// DayGroup lists the instances starting on one UTC date.
type DayGroup struct {
	Date      string          `json:"date"`
	Instances []EventInstance `json:"instances"`
}

// Collect drains a sequence of instances, keeping the first of each identity.
func Collect(seq iter.Seq[EventInstance]) []EventInstance {
	seen := make(map[string]struct{})
	out := make([]EventInstance, 0)
	for inst := range seq {
		if _, dup := seen[inst.InstanceID]; dup {
			continue
		}
		seen[inst.InstanceID] = struct{}{}
		out = append(out, inst)
	}
	return out
}

// GroupByDate groups instances by UTC start date, dates ascending and
// instances within a date by start time.
func GroupByDate(instances []EventInstance) []DayGroup {
	byDate := make(map[string][]EventInstance)
	for _, inst := range instances {
		date := inst.Start.Format("2006-01-02")
		byDate[date] = append(byDate[date], inst)
	}

	groups := make([]DayGroup, 0, len(byDate))
	for date, list := range byDate {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Start.Before(list[j].Start)
		})
		groups = append(groups, DayGroup{Date: date, Instances: list})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date < groups[j].Date
	})

	return groups
}
