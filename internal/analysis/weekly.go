package analysis

import (
	"math"
	"time"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// WeekBucket is one calendar week, labelled by its closing Sunday.
type WeekBucket struct {
	End   time.Time
	Count int
	Means []float64 // aligned with WeeklySeries.Fields; NaN when Count is 0
}

// WeeklySeries is a chronological, gap-free run of weekly means.
type WeeklySeries struct {
	Fields []feedback.Column
	Weeks  []WeekBucket
}

// Series returns the week ends and the means of one field, for plotting.
func (s *WeeklySeries) Series(field feedback.Column) ([]time.Time, []float64, bool) {
	fi := -1
	for i, f := range s.Fields {
		if f == field {
			fi = i
			break
		}
	}
	if fi < 0 {
		return nil, nil, false
	}
	xs := make([]time.Time, len(s.Weeks))
	ys := make([]float64, len(s.Weeks))
	for i, w := range s.Weeks {
		xs[i] = w.End
		ys[i] = w.Means[fi]
	}
	return xs, ys, true
}

// WeekEnding returns the Sunday that closes the week containing t, at
// midnight UTC. A Sunday maps to itself.
func WeekEnding(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (7 - int(d.Weekday())) % 7
	return d.AddDate(0, 0, offset)
}

// WeeklyMeans buckets records into weeks ending Sunday by Feedback_Date and
// averages each field per week. Weeks between the first and last bucket with
// no records are kept with a zero count.
func WeeklyMeans(recs []feedback.Record, fields []feedback.Column) (*WeeklySeries, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if err := requireNumeric(fields); err != nil {
		return nil, err
	}
	type acc struct {
		n   int
		sum []float64
	}
	byWeek := map[time.Time]*acc{}
	first, last := time.Time{}, time.Time{}
	for _, r := range recs {
		end := WeekEnding(r.FeedbackDate)
		a := byWeek[end]
		if a == nil {
			a = &acc{sum: make([]float64, len(fields))}
			byWeek[end] = a
		}
		a.n++
		for i, f := range fields {
			x, _ := r.Numeric(f)
			a.sum[i] += x
		}
		if first.IsZero() || end.Before(first) {
			first = end
		}
		if last.IsZero() || end.After(last) {
			last = end
		}
	}

	s := &WeeklySeries{Fields: append([]feedback.Column(nil), fields...)}
	for end := first; !end.After(last); end = end.AddDate(0, 0, 7) {
		b := WeekBucket{End: end, Means: make([]float64, len(fields))}
		if a := byWeek[end]; a != nil {
			b.Count = a.n
			for i := range fields {
				b.Means[i] = a.sum[i] / float64(a.n)
			}
		} else {
			for i := range fields {
				b.Means[i] = math.NaN()
			}
		}
		s.Weeks = append(s.Weeks, b)
	}
	return s, nil
}
