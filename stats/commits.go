package stats

import (
	"time"

	"ghexplorer/models"
)

// MonthsOfActivity is the length of every commit activity series.
const MonthsOfActivity = 12

// MonthLabelLayout renders bucket labels such as "Oct 26".
const MonthLabelLayout = "Jan 06"

// EmptyActivity returns the trailing twelve month labels ending with now's
// month, all with value 0.
func EmptyActivity(now time.Time) models.Series {
	return BucketCommits(nil, now)
}

// BucketCommits counts commit dates per calendar month (UTC) over the
// twelve months ending with now's month, oldest first. Dates outside the
// window are ignored.
func BucketCommits(dates []time.Time, now time.Time) models.Series {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	series := models.Series{
		Labels: make([]string, MonthsOfActivity),
		Values: make([]int, MonthsOfActivity),
	}
	index := make(map[string]int, MonthsOfActivity)
	for i := 0; i < MonthsOfActivity; i++ {
		month := first.AddDate(0, i-(MonthsOfActivity-1), 0)
		label := month.Format(MonthLabelLayout)
		series.Labels[i] = label
		index[label] = i
	}

	for _, d := range dates {
		if i, ok := index[d.UTC().Format(MonthLabelLayout)]; ok {
			series.Values[i]++
		}
	}
	return series
}
