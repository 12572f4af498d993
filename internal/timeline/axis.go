package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/joshharrison/ganttloom/internal/daterange"
)

// Bucket is one labelled slice of the time axis.
type Bucket struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Label       string    `json:"label"`
	X           float64   `json:"x"`
	Width       float64   `json:"width"`
	Shaded      bool      `json:"shaded"`
	NominalDays int       `json:"nominalDays"`
}

// bucketStart aligns t to the start of its quarter, month or week (Sunday).
func bucketStart(t time.Time, g Granularity) time.Time {
	t = daterange.Truncate(t)
	switch g {
	case Weeks:
		return t.AddDate(0, 0, -int(t.Weekday()))
	case Months:
		return daterange.Date(t.Year(), t.Month(), 1)
	default:
		q := (int(t.Month())-1)/3*3 + 1
		return daterange.Date(t.Year(), time.Month(q), 1)
	}
}

func bucketNext(t time.Time, g Granularity) time.Time {
	switch g {
	case Weeks:
		return t.AddDate(0, 0, 7)
	case Months:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 3, 0)
	}
}

func bucketLabel(t time.Time, g Granularity) string {
	switch g {
	case Weeks:
		first := daterange.Date(t.Year(), t.Month(), 1)
		return fmt.Sprintf("Week %d", int(math.Ceil(float64(t.Day()+int(first.Weekday()))/7)))
	case Months:
		return t.Format("Jan 2006")
	default:
		return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
	}
}

func nominalDays(t time.Time, g Granularity) int {
	switch g {
	case Weeks:
		return 7
	case Months:
		return daterange.Date(t.Year(), t.Month()+1, 0).Day()
	default:
		return 90
	}
}

// buckets covers w with aligned buckets. The first bucket may start before
// the window and the last is clipped to the chart width.
func (s scale) buckets(g Granularity) []Bucket {
	var out []Bucket
	for cur := bucketStart(s.window.Start, g); cur.Before(s.window.End); {
		next := bucketNext(cur, g)
		x := s.x(cur)
		end := math.Min(s.x(next), s.width)
		out = append(out, Bucket{
			Start:       cur,
			End:         next,
			Label:       bucketLabel(cur, g),
			X:           x,
			Width:       end - x,
			Shaded:      (int(cur.Month())-1)%2 == 0,
			NominalDays: nominalDays(cur, g),
		})
		cur = next
	}
	return out
}
