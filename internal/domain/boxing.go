package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// FightResult is the outcome of a recorded bout.
type FightResult string

const (
	Win  FightResult = "win"
	Loss FightResult = "loss"
	Draw FightResult = "draw"
)

// TapeKind selects which discipline a block of footage belongs to.
type TapeKind string

const (
	TapeBoxing     TapeKind = "boxing"
	TapeKickboxing TapeKind = "kickboxing"
	TapeMMA        TapeKind = "mma"
)

// RecordBoxingFight tallies a bout.
func RecordBoxingFight(result FightResult) Mutation {
	return onRecord("record fight", Boxing, func(r *ActivityRecord, now time.Time) error {
		switch result {
		case Win:
			r.Wins++
		case Loss:
			r.Losses++
		case Draw:
			r.Draws++
		default:
			return fmt.Errorf("result %q: %w", result, ErrInvalidValue)
		}
		r.TotalFights++
		r.LastSession = ptr(DayString(now))
		return nil
	})
}

func addTape(kind TapeKind, hours float64) func(r *ActivityRecord, _ time.Time) error {
	return func(r *ActivityRecord, _ time.Time) error {
		if !positive(hours) {
			return fmt.Errorf("hours %v: %w", hours, ErrInvalidValue)
		}
		switch kind {
		case TapeBoxing:
			r.BoxingTapeHours += hours
		case TapeKickboxing:
			r.KickboxingTapeHours += hours
		case TapeMMA:
			r.MMATapeHours += hours
		default:
			return fmt.Errorf("tape kind %q: %w", kind, ErrInvalidValue)
		}
		return nil
	}
}

// AddTapeHours adds footage hours to one discipline's running total.
func AddTapeHours(kind TapeKind, hours float64) Mutation {
	return onRecord("add tape hours", Boxing, addTape(kind, hours))
}

// AddCustomTapeHours is AddTapeHours for a custom boxing-template activity.
func AddCustomTapeHours(slug string, kind TapeKind, hours float64) Mutation {
	return onCustom("add custom tape hours", slug, addTape(kind, hours))
}

func tapeValue(v float64) float64 {
	if positive(v) {
		return v
	}
	return 0
}

// AddBoxingTapeEntry appends a weekly footage point and folds it into the totals.
func AddBoxingTapeEntry(boxing, kickboxing, mma float64, label string) Mutation {
	b, k, m := tapeValue(boxing), tapeValue(kickboxing), tapeValue(mma)
	return onRecord("add tape entry", Boxing, func(r *ActivityRecord, now time.Time) error {
		if b+k+m <= 0 {
			return fmt.Errorf("empty tape entry: %w", ErrInvalidValue)
		}
		trend := r.BoxingTapeTrend
		var ts int64
		if n := len(trend); n > 0 {
			ts = nextTimestamp(true, trend[n-1].TS, trend[n-1].Date, weekStep, now)
		} else {
			ts = nextTimestamp(false, nil, "", weekStep, now)
		}
		point := TapePoint{
			Date:       pickLabel(label, func() string { return weekLabel(ts, now.Location()) }),
			TS:         ptr(ts),
			Boxing:     b,
			Kickboxing: k,
			MMA:        m,
		}
		r.BoxingTapeTrend = append(slices.Clone(trend), point)
		r.BoxingTapeHours += b
		r.KickboxingTapeHours += k
		r.MMATapeHours += m
		return nil
	})
}

// TapeEdit carries optional replacement values for a footage point. Nil or invalid values
// keep the current ones.
type TapeEdit struct {
	Boxing     *float64
	Kickboxing *float64
	MMA        *float64
	Label      string
}

func editValue(v *float64, old float64) float64 {
	if v == nil || !finite(*v) || *v < 0 {
		return old
	}
	return *v
}

// UpdateBoxingTapeAt edits the footage point at index and shifts the totals by the deltas.
func UpdateBoxingTapeAt(index int, edit TapeEdit) Mutation {
	return onRecord("update tape entry", Boxing, func(r *ActivityRecord, _ time.Time) error {
		if err := checkIndex(index, len(r.BoxingTapeTrend)); err != nil {
			return err
		}
		trend := slices.Clone(r.BoxingTapeTrend)
		cur := trend[index]
		next := cur
		next.Boxing = editValue(edit.Boxing, cur.Boxing)
		next.Kickboxing = editValue(edit.Kickboxing, cur.Kickboxing)
		next.MMA = editValue(edit.MMA, cur.MMA)
		next.Date = pickLabel(edit.Label, func() string { return cur.Date })
		trend[index] = next

		r.BoxingTapeTrend = trend
		r.BoxingTapeHours += next.Boxing - cur.Boxing
		r.KickboxingTapeHours += next.Kickboxing - cur.Kickboxing
		r.MMATapeHours += next.MMA - cur.MMA
		return nil
	})
}

// DeleteBoxingTapeAt drops the footage point at index and subtracts it from the totals.
func DeleteBoxingTapeAt(index int) Mutation {
	return onRecord("delete tape entry", Boxing, func(r *ActivityRecord, _ time.Time) error {
		if err := checkIndex(index, len(r.BoxingTapeTrend)); err != nil {
			return err
		}
		cur := r.BoxingTapeTrend[index]
		r.BoxingTapeTrend = removeAt(r.BoxingTapeTrend, index)
		r.BoxingTapeHours -= cur.Boxing
		r.KickboxingTapeHours -= cur.Kickboxing
		r.MMATapeHours -= cur.MMA
		return nil
	})
}

// ResetBoxingTape clears the footage series and totals.
func ResetBoxingTape() Mutation {
	return onRecord("reset tape", Boxing, func(r *ActivityRecord, _ time.Time) error {
		r.BoxingTapeHours = 0
		r.KickboxingTapeHours = 0
		r.MMATapeHours = 0
		r.BoxingTapeTrend = []TapePoint{}
		return nil
	})
}

// AddFitnessScore appends a monthly fitness test result.
func AddFitnessScore(score float64, label string) Mutation {
	return onRecord("add fitness score", Boxing, func(r *ActivityRecord, now time.Time) error {
		if !positive(score) {
			return fmt.Errorf("score %v: %w", score, ErrInvalidValue)
		}
		rounded := math.Round(score)
		trend := r.FitnessTestTrend
		var ts int64
		if n := len(trend); n > 0 {
			ts = nextTimestamp(true, trend[n-1].TS, trend[n-1].Date, monthStep, now)
		} else {
			ts = nextTimestamp(false, nil, "", monthStep, now)
		}
		point := FitnessPoint{
			Date:  pickLabel(label, func() string { return monthLabel(ts, now.Location()) }),
			Score: rounded,
			TS:    ptr(ts),
		}
		r.FitnessTestTrend = append(slices.Clone(trend), point)
		r.FitnessTestThisMonth = rounded
		r.FitnessTestHighest = math.Max(r.FitnessTestHighest, rounded)
		return nil
	})
}

// UpdateFitnessScoreAt edits the score or label at index. A nil or negative score keeps the
// current one.
func UpdateFitnessScoreAt(index int, score *float64, label string) Mutation {
	return onRecord("update fitness score", Boxing, func(r *ActivityRecord, _ time.Time) error {
		if err := checkIndex(index, len(r.FitnessTestTrend)); err != nil {
			return err
		}
		trend := slices.Clone(r.FitnessTestTrend)
		cur := trend[index]
		if score != nil && finite(*score) && *score >= 0 {
			cur.Score = math.Round(*score)
		}
		cur.Date = pickLabel(label, func() string { return cur.Date })
		trend[index] = cur
		r.FitnessTestTrend = trend
		recomputeFitness(r)
		return nil
	})
}

// DeleteFitnessScoreAt drops the score at index.
func DeleteFitnessScoreAt(index int) Mutation {
	return onRecord("delete fitness score", Boxing, func(r *ActivityRecord, _ time.Time) error {
		if err := checkIndex(index, len(r.FitnessTestTrend)); err != nil {
			return err
		}
		r.FitnessTestTrend = removeAt(r.FitnessTestTrend, index)
		recomputeFitness(r)
		return nil
	})
}

func recomputeFitness(r *ActivityRecord) {
	highest := 0.0
	for _, p := range r.FitnessTestTrend {
		highest = math.Max(highest, p.Score)
	}
	r.FitnessTestHighest = highest
	r.FitnessTestThisMonth = 0
	if n := len(r.FitnessTestTrend); n > 0 {
		r.FitnessTestThisMonth = r.FitnessTestTrend[n-1].Score
	}
}
