package moments

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/Levilaell/snapcast/internal/timerange"
)

// MaxMoments caps how many ranked moments survive validation.
const MaxMoments = 10

// RawMoment is the untrusted shape produced by the analysis model. Pointer
// fields distinguish a missing field from an explicit zero, so a candidate
// with no start_time can be told apart from one starting at 0s.
type RawMoment struct {
	StartTime         *float64 `json:"start_time" validate:"required,gte=0"`
	EndTime           *float64 `json:"end_time" validate:"required"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	ViralScore        *float64 `json:"viral_score" validate:"required,gt=0"`
	ViralReason       string   `json:"viral_reason"`
	Category          string   `json:"category"`
	TranscriptPreview string   `json:"transcript_preview"`
	// Duration is whatever the model claimed; it is ignored and recomputed.
	Duration *float64 `json:"duration,omitempty"`
}

// Moment is a validated candidate viral segment. Once past ValidateAndRank
// every field can be trusted: times are ordered, duration is recomputed and
// within policy, and the score is positive.
type Moment struct {
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Duration    float64 `json:"duration"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ViralScore  float64 `json:"viral_score"`
	ViralReason string  `json:"viral_reason"`
	Category    string  `json:"category"`
}

var validate = validator.New()

// ValidateAndRank filters untrusted candidates down to a deterministic,
// index-addressable list: malformed or out-of-policy records are dropped,
// survivors are sorted by viral score descending with ties kept in input
// order, and the result is capped at MaxMoments. Selection by index into
// the returned slice is stable across repeated calls on the same input.
func ValidateAndRank(raw []RawMoment) []Moment {
	out := make([]Moment, 0, len(raw))
	for _, rm := range raw {
		if err := validate.Struct(rm); err != nil {
			continue
		}
		start, end := *rm.StartTime, *rm.EndTime
		if !timerange.ValidClipDuration(start, end) {
			continue
		}
		out = append(out, Moment{
			StartTime:   start,
			EndTime:     end,
			Duration:    end - start,
			Title:       rm.Title,
			Description: rm.Description,
			ViralScore:  *rm.ViralScore,
			ViralReason: rm.ViralReason,
			Category:    rm.Category,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ViralScore > out[j].ViralScore
	})

	if len(out) > MaxMoments {
		out = out[:MaxMoments]
	}
	return out
}
