package domain

// Intent is the classifier's top intent for a message.
type Intent struct {
	Name       string  `json:"name" mapstructure:"name"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
}

// IntentPrediction is one scored intent within a topic, with its own slots.
type IntentPrediction struct {
	Label      string         `json:"label" mapstructure:"label"`
	Confidence float64        `json:"confidence" mapstructure:"confidence"`
	Slots      SlotCollection `json:"slots,omitempty" mapstructure:"slots"`
}

// TopicPrediction holds the intents the classifier scored for one topic.
type TopicPrediction struct {
	Confidence float64            `json:"confidence" mapstructure:"confidence"`
	OOS        float64            `json:"oos" mapstructure:"oos"`
	Intents    []IntentPrediction `json:"intents" mapstructure:"intents"`
}

// TopIntent returns the highest-confidence intent of the topic.
// Ties keep the first one listed.
func (p TopicPrediction) TopIntent() (IntentPrediction, bool) {
	if len(p.Intents) == 0 {
		return IntentPrediction{}, false
	}
	best := p.Intents[0]
	for _, in := range p.Intents[1:] {
		if in.Confidence > best.Confidence {
			best = in
		}
	}
	return best, true
}

// Understanding is the classifier output for one message.
type Understanding struct {
	Intent           Intent                     `json:"intent" mapstructure:"intent"`
	Slots            SlotCollection             `json:"slots,omitempty" mapstructure:"slots"`
	Predictions      map[string]TopicPrediction `json:"predictions,omitempty" mapstructure:"predictions"`
	Triggers         map[string]Trigger         `json:"triggers,omitempty" mapstructure:"triggers"`
	Actions          []TurnAction               `json:"actions,omitempty" mapstructure:"actions"`
	IncludedContexts []string                   `json:"included_contexts,omitempty" mapstructure:"included_contexts"`
	Errored          bool                       `json:"errored,omitempty" mapstructure:"errored"`
}
