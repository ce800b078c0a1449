package krajcbiten

import (
	"fmt"
	"slices"
	"time"

	"github.com/oliverbestmann/krajc"
)

// FormatTimings renders one line per schedule, followed by one line per system
// with a moving average of at least threshold, slowest first.
func FormatTimings(stats *krajc.TimingStats, threshold time.Duration) []string {
	var lines []string

	var maxNameLength int

	scheduleIds := stats.Schedules()
	for _, scheduleId := range scheduleIds {
		maxNameLength = max(maxNameLength, len(scheduleId.String()))
	}

	type system struct {
		Name    string
		Timings krajc.Timings
	}

	var systems []system
	for _, name := range stats.Systems() {
		t, _ := stats.System(name)
		if t.MovingAverage < threshold {
			continue
		}

		systems = append(systems, system{name, t})
		maxNameLength = max(maxNameLength, len(name))
	}

	for _, scheduleId := range scheduleIds {
		t, _ := stats.Schedule(scheduleId)
		lines = append(lines, formatLine(maxNameLength, scheduleId.String(), t))
	}

	slices.SortStableFunc(systems, func(a, b system) int {
		return int(b.Timings.MovingAverage - a.Timings.MovingAverage)
	})

	if len(systems) > 0 {
		lines = append(lines, "")
	}

	for _, sys := range systems {
		lines = append(lines, formatLine(maxNameLength, sys.Name, sys.Timings))
	}

	return lines
}

func formatLine(width int, name string, t krajc.Timings) string {
	return fmt.Sprintf("%-[1]*s runs=%5d, latest=%6.2fms, min=%6.2fms, max=%6.2fms, avg=%6.2fms",
		width,
		name,
		t.Count,
		t.Latest.Seconds()*1000,
		t.Min.Seconds()*1000,
		t.Max.Seconds()*1000,
		t.MovingAverage.Seconds()*1000,
	)
}
