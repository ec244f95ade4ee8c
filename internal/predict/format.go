// Package predict turns raw model score vectors into labeled, ranked results.
package predict

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// ClassScore pairs a class name with its probability.
type ClassScore struct {
	Class       string  `json:"class"`
	Probability float32 `json:"probability"`
	Percentage  string  `json:"percentage"`
}

// Result is a fully formatted prediction.
type Result struct {
	PredictedClass       string       `json:"predictedClass"`
	Confidence           float32      `json:"confidence"`
	ConfidencePercentage string       `json:"confidencePercentage"`
	AllPredictions       []ClassScore `json:"allPredictions"`
}

// Format pairs each probability positionally with its class name and ranks
// the result. The winner is the maximum probability; ties go to the lowest
// index. A length mismatch between vector and class list is a configuration
// error, never silently truncated.
func Format(probs []float32, classes []string) (Result, error) {
	if len(probs) != len(classes) {
		return Result{}, errors.Errorf("class list and score vector disagree: %d classes, %d scores",
			len(classes), len(probs))
	}
	if len(probs) == 0 {
		return Result{}, errors.New("empty score vector")
	}

	maxIdx := 0
	for i, p := range probs {
		if p > probs[maxIdx] {
			maxIdx = i
		}
	}

	scores := make([]ClassScore, len(probs))
	for i, p := range probs {
		scores[i] = ClassScore{
			Class:       classes[i],
			Probability: p,
			Percentage:  formatPercent(p),
		}
	}
	// stable: equal probabilities keep the fixed class order
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Probability > scores[j].Probability
	})

	return Result{
		PredictedClass:       classes[maxIdx],
		Confidence:           math32.Round(probs[maxIdx]*10000) / 10000,
		ConfidencePercentage: formatPercent(probs[maxIdx]),
		AllPredictions:       scores,
	}, nil
}

func formatPercent(p float32) string {
	return fmt.Sprintf("%.2f%%", float64(p)*100)
}
