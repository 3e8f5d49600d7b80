// Package labeler detects radiological observations in clinical report
// sentences using negation-aware trigger phrase matching.
package labeler

// Category names a radiological observation.
type Category string

const (
	Cardiomegaly    Category = "Cardiomegaly"
	LungLesion      Category = "Lung Lesion"
	AirspaceOpacity Category = "Airspace Opacity"
	Edema           Category = "Edema"
	Consolidation   Category = "Consolidation"
	Pneumonia       Category = "Pneumonia"
	Atelectasis     Category = "Atelectasis"
	Pneumothorax    Category = "Pneumothorax"
	PleuralEffusion Category = "Pleural Effusion"
	PleuralOther    Category = "Pleural Other"
	Fracture        Category = "Fracture"
)

var categories = []Category{
	Cardiomegaly,
	LungLesion,
	AirspaceOpacity,
	Edema,
	Consolidation,
	Pneumonia,
	Atelectasis,
	Pneumothorax,
	PleuralEffusion,
	PleuralOther,
	Fracture,
}

// Categories returns the fixed observation set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsKnown reports whether c belongs to the fixed observation set.
func IsKnown(c Category) bool {
	for _, known := range categories {
		if known == c {
			return true
		}
	}
	return false
}

// Observation is a single category flag.
type Observation struct {
	Category Category `json:"category"`
	Present  bool     `json:"present"`
}

// ObservationMap holds the presence flag of every fixed category for one report.
type ObservationMap map[Category]bool

func newObservationMap() ObservationMap {
	obs := make(ObservationMap, len(categories))
	for _, c := range categories {
		obs[c] = false
	}
	return obs
}

// Ordered lists the flags in display order.
func (m ObservationMap) Ordered() []Observation {
	out := make([]Observation, 0, len(categories))
	for _, c := range categories {
		out = append(out, Observation{Category: c, Present: m[c]})
	}
	return out
}

// Present returns the categories flagged true, in display order.
func (m ObservationMap) Present() []Category {
	var out []Category
	for _, c := range categories {
		if m[c] {
			out = append(out, c)
		}
	}
	return out
}

// Mention locates a trigger phrase of a present category inside a report.
// Start and End are byte offsets, End exclusive.
type Mention struct {
	Category Category `json:"category"`
	Phrase   string   `json:"phrase"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
}

// Hit records a positive phrase match.
type Hit struct {
	Sentence int    `json:"sentence"`
	Phrase   string `json:"phrase"`
}

// Evidence explains how an ObservationMap was derived.
type Evidence struct {
	Observations ObservationMap     `json:"observations"`
	Hits         map[Category][]Hit `json:"hits"`
	// Negated maps skipped sentence indices to the cue that flagged them.
	Negated map[int]string `json:"negated"`
}
