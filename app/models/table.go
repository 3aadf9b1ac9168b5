package models

import (
	"math"
	"sort"
	"time"
)

const (
	ColOpponentRating   = "opponent's rating"
	ColOpponentAccuracy = "opponent accuracy"
	ColEndTime          = "end_time"
	ColTimeClass        = "time_class"
)

func IdentityRatingColumn(identity string) string   { return identity + "'s rating" }
func IdentityAccuracyColumn(identity string) string { return identity + " accuracy" }

// GameTable is the output of one ingest call. Games keep source order.
type GameTable struct {
	Identity    string        `json:"identity"`
	HasAccuracy bool          `json:"has_accuracy"`
	Games       []CleanedGame `json:"games"`
	// Excluded counts records where the identity matched neither or both sides.
	Excluded int `json:"excluded"`
}

func (t GameTable) Len() int { return len(t.Games) }

func (t GameTable) Empty() bool { return len(t.Games) == 0 }

// Columns lists the canonical column names. Accuracy columns appear only
// when the source batch reported accuracies.
func (t GameTable) Columns() []string {
	cols := []string{IdentityRatingColumn(t.Identity), ColOpponentRating}
	if t.HasAccuracy {
		cols = append(cols, IdentityAccuracyColumn(t.Identity), ColOpponentAccuracy)
	}
	return append(cols, ColEndTime, ColTimeClass)
}

// Rows renders the table keyed by column name. Missing accuracies are nil.
func (t GameTable) Rows() []map[string]any {
	out := make([]map[string]any, 0, len(t.Games))
	for _, g := range t.Games {
		row := map[string]any{
			IdentityRatingColumn(t.Identity): g.IdentityRating,
			ColOpponentRating:                g.OpponentRating,
			ColEndTime:                       g.EndTime,
			ColTimeClass:                     g.TimeClass,
		}
		if t.HasAccuracy {
			row[IdentityAccuracyColumn(t.Identity)] = g.IdentityAccuracy
			row[ColOpponentAccuracy] = g.OpponentAccuracy
		}
		out = append(out, row)
	}
	return out
}

// Append concatenates other onto t, keeping both orders.
func (t *GameTable) Append(other GameTable) {
	t.Games = append(t.Games, other.Games...)
	t.HasAccuracy = t.HasAccuracy || other.HasAccuracy
	t.Excluded += other.Excluded
}

// Summary is what the dashboard shows next to the charts.
type Summary struct {
	Identity          string         `json:"identity"`
	Games             int            `json:"games"`
	AvgOpponentRating float64        `json:"avg_opponent_rating"`
	MaxOpponentRating int            `json:"max_opponent_rating"`
	TimeClasses       []ClassCount   `json:"time_classes"`
	First             *time.Time     `json:"first,omitempty"`
	Last              *time.Time     `json:"last,omitempty"`
	RatingByClass     map[string]int `json:"latest_rating_by_class"`

	// RatingSeries is the identity's rating over time per time class,
	// ordered by end time.
	RatingSeries map[string][]RatingPoint `json:"rating_series"`
}

type RatingPoint struct {
	EndTime time.Time `json:"end_time"`
	Rating  int       `json:"rating"`
}

type ClassCount struct {
	TimeClass string `json:"time_class"`
	Count     int    `json:"count"`
}

// Summarize computes opponent rating stats and the time-class distribution.
// Classes are ordered by count descending, then name.
func (t GameTable) Summarize() Summary {
	s := Summary{
		Identity:      t.Identity,
		Games:         len(t.Games),
		RatingByClass: map[string]int{},
		RatingSeries:  map[string][]RatingPoint{},
	}
	if len(t.Games) == 0 {
		return s
	}

	counts := map[string]int{}
	sum := 0
	for i, g := range t.Games {
		sum += g.OpponentRating
		if i == 0 || g.OpponentRating > s.MaxOpponentRating {
			s.MaxOpponentRating = g.OpponentRating
		}
		counts[g.TimeClass]++
		s.RatingSeries[g.TimeClass] = append(s.RatingSeries[g.TimeClass], RatingPoint{EndTime: g.EndTime, Rating: g.IdentityRating})

		end := g.EndTime
		if s.First == nil || end.Before(*s.First) {
			s.First = &end
		}
		if s.Last == nil || end.After(*s.Last) {
			s.Last = &end
		}
	}
	s.AvgOpponentRating = math.Round(float64(sum) / float64(len(t.Games)))

	for class, points := range s.RatingSeries {
		sort.SliceStable(points, func(i, j int) bool { return points[i].EndTime.Before(points[j].EndTime) })
		s.RatingByClass[class] = points[len(points)-1].Rating
	}

	for class, n := range counts {
		s.TimeClasses = append(s.TimeClasses, ClassCount{TimeClass: class, Count: n})
	}
	sort.Slice(s.TimeClasses, func(i, j int) bool {
		if s.TimeClasses[i].Count != s.TimeClasses[j].Count {
			return s.TimeClasses[i].Count > s.TimeClasses[j].Count
		}
		return s.TimeClasses[i].TimeClass < s.TimeClasses[j].TimeClass
	})
	return s
}
