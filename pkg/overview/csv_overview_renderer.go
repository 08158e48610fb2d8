package overview

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	RenderOverview(overview WeeklyOverview) (string, error)
}

type CsvOverviewRendererImpl struct {
}

func NewCsvOverviewRenderer() *CsvOverviewRendererImpl {
	return &CsvOverviewRendererImpl{}
}

// RenderOverview writes one column per assignee and one row per day, followed by the weekly totals.
func (t *CsvOverviewRendererImpl) RenderOverview(overview WeeklyOverview) (string, error) {
	names := make([]string, 0, len(overview.Assignees)+2)
	names = append(names, "")
	for _, a := range overview.Assignees {
		names = append(names, a.Name)
	}

	timesByDay := make([][]string, 0, len(overview.Days))
	for _, daily := range overview.Days {
		timesByDay = append(timesByDay, getTimesForDay(daily, names[1:]))
	}

	totals := make([]string, 0, len(overview.Assignees)+2)
	totals = append(totals, "Total")
	for _, a := range overview.Assignees {
		totals = append(totals, durationToString(a.Duration))
	}
	totals = append(totals, durationToString(overview.TotalTime))

	names = append(names, "SUM")
	data := make([][]string, 0, len(timesByDay)+2)
	data = append(data, names)
	data = append(data, timesByDay...)
	data = append(data, totals)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func getTimesForDay(daily DailyOverview, names []string) []string {
	durations := make(map[string]time.Duration, len(daily.Assignees))
	for _, a := range daily.Assignees {
		durations[a.Name] = a.Duration
	}
	row := make([]string, 0, len(names)+2)
	row = append(row, daily.Date.Format("02/01/2006"))
	for _, name := range names {
		row = append(row, durationToString(durations[name]))
	}
	row = append(row, durationToString(daily.TotalTime))
	return row
}

func durationToString(duration time.Duration) string {
	hours := strconv.Itoa(int(duration.Hours()))
	if len(hours) == 1 {
		hours = "0" + hours
	}
	minutes := strconv.Itoa(int(duration.Minutes()) % 60)
	if len(minutes) == 1 {
		minutes = "0" + minutes
	}
	seconds := strconv.Itoa(int(duration.Seconds()) % 60)
	if len(seconds) == 1 {
		seconds = "0" + seconds
	}
	return hours + ":" + minutes + ":" + seconds
}
