package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bucket distance limits in meters. Each limit is inclusive.
const (
	NearLimitMeters   = 1000.0
	MediumLimitMeters = 3000.0
	FarLimitMeters    = SearchRadiusMeters
)

// Bucket is a fixed distance range used to weight facilities by proximity.
type Bucket string

const (
	BucketNear   Bucket = "near"
	BucketMedium Bucket = "medium"
	BucketFar    Bucket = "far"
)

// Weight is the bucket's contribution to the coverage score.
func (b Bucket) Weight() int {
	switch b {
	case BucketNear:
		return 3
	case BucketMedium:
		return 2
	case BucketFar:
		return 1
	default:
		return 0
	}
}

// Classify places a distance into a bucket. It returns false for distances
// beyond FarLimitMeters, which are excluded from the analysis.
func Classify(distanceMeters float64) (Bucket, bool) {
	switch {
	case distanceMeters <= NearLimitMeters:
		return BucketNear, true
	case distanceMeters <= MediumLimitMeters:
		return BucketMedium, true
	case distanceMeters <= FarLimitMeters:
		return BucketFar, true
	default:
		return "", false
	}
}

// Level is the qualitative coverage label.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelGood     Level = "good"
)

// Label is the user-facing text for the level.
func (l Level) Label() string {
	switch l {
	case LevelGood:
		return "🟢 good coverage"
	case LevelModerate:
		return "🟡 moderate coverage"
	case LevelLow:
		return "🔴 insufficient coverage"
	default:
		return "unknown"
	}
}

// Score thresholds for the coverage levels.
const (
	goodScore     = 5
	moderateScore = 2
)

// BucketCounts holds the number of facilities per bucket.
type BucketCounts struct {
	Near   int `json:"near"`
	Medium int `json:"medium"`
	Far    int `json:"far"`
}

// Total is the number of facilities counted across all buckets.
func (c BucketCounts) Total() int { return c.Near + c.Medium + c.Far }

// Score weights the counts: 3 per near, 2 per medium, 1 per far.
func (c BucketCounts) Score() int {
	return c.Near*BucketNear.Weight() + c.Medium*BucketMedium.Weight() + c.Far*BucketFar.Weight()
}

func (c *BucketCounts) add(b Bucket) {
	switch b {
	case BucketNear:
		c.Near++
	case BucketMedium:
		c.Medium++
	case BucketFar:
		c.Far++
	}
}

// LevelFor derives the coverage level from bucket counts.
func LevelFor(c BucketCounts) Level {
	if c.Total() == 0 {
		return LevelLow
	}
	switch score := c.Score(); {
	case score >= goodScore:
		return LevelGood
	case score >= moderateScore:
		return LevelModerate
	default:
		return LevelLow
	}
}

// ScoredFacility is a facility with its distance from the analysed point.
type ScoredFacility struct {
	Facility
	DistanceMeters float64 `json:"distance_m"`
	Bucket         Bucket  `json:"bucket"`
}

// DistanceKM formats the distance in kilometers with two decimals.
func (f ScoredFacility) DistanceKM() string { return FormatKM(f.DistanceMeters) }

// CoverageResult is the outcome of one analysis pass.
type CoverageResult struct {
	Point      Point            `json:"point"`
	Counts     BucketCounts     `json:"counts"`
	Total      int              `json:"total"`
	Score      int              `json:"score"`
	Level      Level            `json:"level"`
	Nearest    *ScoredFacility  `json:"nearest,omitempty"`
	Facilities []ScoredFacility `json:"facilities"`
}

// Summarize classifies facilities around origin and derives the coverage result.
// Facilities beyond the search radius are dropped. On equal distances the
// first facility seen stays the nearest.
func Summarize(origin Point, facilities []Facility) CoverageResult {
	result := CoverageResult{
		Point:      origin,
		Facilities: make([]ScoredFacility, 0, len(facilities)),
	}

	for _, f := range facilities {
		d := origin.DistanceTo(f.Location)
		bucket, ok := Classify(d)
		if !ok {
			continue
		}
		result.Counts.add(bucket)

		scored := ScoredFacility{Facility: f, DistanceMeters: d, Bucket: bucket}
		result.Facilities = append(result.Facilities, scored)
		if result.Nearest == nil || d < result.Nearest.DistanceMeters {
			nearest := scored
			result.Nearest = &nearest
		}
	}

	result.Total = result.Counts.Total()
	result.Score = result.Counts.Score()
	result.Level = LevelFor(result.Counts)
	return result
}

// FormatKM renders meters as kilometers with two decimals, e.g. 1234 -> "1.23".
func FormatKM(meters float64) string {
	return fmt.Sprintf("%.2f", meters/1000)
}

// AnalysisEvent stamps a CoverageResult with an identity and a time.
type AnalysisEvent struct {
	ID         string         `json:"id"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Address    string         `json:"address,omitempty"`
	Result     CoverageResult `json:"result"`
}

// NewAnalysisEvent wraps a result with a fresh id and the current time.
func NewAnalysisEvent(result CoverageResult) AnalysisEvent {
	return AnalysisEvent{
		ID:         uuid.NewString(),
		AnalyzedAt: clock.Now().UTC(),
		Result:     result,
	}
}
