package domain

// Trigger is a candidate dialog entry point scored by the classifier.
// Result maps each sub-criterion to a score.
type Trigger struct {
	ID     string             `json:"id" mapstructure:"id"`
	Goal   string             `json:"goal,omitempty" mapstructure:"goal"`
	Result map[string]float64 `json:"result" mapstructure:"result"`
}

// RankedTrigger is a trigger with its aggregate score.
type RankedTrigger struct {
	Trigger
	Score float64 `json:"score"`
}
