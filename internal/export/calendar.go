package export

import (
	"sort"
	"strings"
	"time"
)

// Filter selects posts; empty fields and a zero week match everything.
type Filter struct {
	Platform string `form:"platform"`
	Format   string `form:"format"`
	Week     int    `form:"week"`
}

func FilterPosts(posts []CalendarPost, f Filter) []CalendarPost {
	out := []CalendarPost{}
	for _, p := range posts {
		if f.Platform != "" && !strings.EqualFold(p.Platform, f.Platform) {
			continue
		}
		if f.Format != "" && !strings.EqualFold(p.Format, f.Format) {
			continue
		}
		if f.Week != 0 && p.Week != f.Week {
			continue
		}
		out = append(out, p)
	}
	return out
}

func GroupByPlatform(posts []CalendarPost) map[string][]CalendarPost {
	return groupBy(posts, func(p CalendarPost) string { return p.Platform })
}

func GroupByFormat(posts []CalendarPost) map[string][]CalendarPost {
	return groupBy(posts, func(p CalendarPost) string { return p.Format })
}

func GroupByWeek(posts []CalendarPost) map[int][]CalendarPost {
	out := map[int][]CalendarPost{}
	for _, p := range posts {
		out[p.Week] = append(out[p.Week], p)
	}
	return out
}

func groupBy(posts []CalendarPost, key func(CalendarPost) string) map[string][]CalendarPost {
	out := map[string][]CalendarPost{}
	for _, p := range posts {
		out[key(p)] = append(out[key(p)], p)
	}
	return out
}

// Counts is the summary shown above the calendar views.
type Counts struct {
	Total      int            `json:"total"`
	ByPlatform map[string]int `json:"by_platform"`
	ByFormat   map[string]int `json:"by_format"`
	ByWeek     map[int]int    `json:"by_week"`
}

func Count(posts []CalendarPost) Counts {
	c := Counts{Total: len(posts), ByPlatform: map[string]int{}, ByFormat: map[string]int{}, ByWeek: map[int]int{}}
	for _, p := range posts {
		c.ByPlatform[p.Platform]++
		c.ByFormat[p.Format]++
		c.ByWeek[p.Week]++
	}
	return c
}

// GridCell is one day of the month grid. Padding cells have Day 0.
type GridCell struct {
	Day   int            `json:"day"`
	Date  string         `json:"date,omitempty"`
	Posts []CalendarPost `json:"posts,omitempty"`
}

type MonthView struct {
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Weeks [][]GridCell `json:"weeks"`
}

// MonthGrid lays out a month in Sunday-first weeks of seven cells.
func MonthGrid(year int, month time.Month, posts []CalendarPost) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := int(first.Weekday())

	byDate := map[string][]CalendarPost{}
	for _, p := range posts {
		byDate[p.Date] = append(byDate[p.Date], p)
	}

	cells := make([]GridCell, 0, 42)
	for i := 0; i < offset; i++ {
		cells = append(cells, GridCell{})
	}
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		cells = append(cells, GridCell{Day: d, Date: date, Posts: byDate[date]})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, GridCell{})
	}

	view := MonthView{Year: year, Month: int(month)}
	for i := 0; i < len(cells); i += 7 {
		view.Weeks = append(view.Weeks, cells[i:i+7])
	}
	return view
}

// FirstMonth returns the month of the earliest dated post.
func FirstMonth(posts []CalendarPost) (int, time.Month, bool) {
	var days []time.Time
	for _, p := range posts {
		if d, err := p.Day(); err == nil {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return 0, 0, false
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days[0].Year(), days[0].Month(), true
}
