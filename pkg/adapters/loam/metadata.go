package loam

// StateMetadata is the front-matter of one state document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type StateMetadata struct {
	// ID defaults to the document name without extension.
	ID string `json:"id" mapstructure:"id"`
	// Order positions the state in the machine; the lowest order is the initial state.
	// Documents with equal order are sorted by id.
	Order int `json:"order" mapstructure:"order"`
	// Initial forces the state to the front regardless of Order.
	Initial bool `json:"initial" mapstructure:"initial"`
	// Transitions holds explicit entries. Entries are decoded one by one so that
	// different key spellings can be mixed.
	Transitions []any `json:"transitions" mapstructure:"transitions"`
	// On is the compact form: message to "action:next".
	On map[string]string `json:"on" mapstructure:"on"`
}

// LoaderTransition is one explicit transition entry.
type LoaderTransition struct {
	Message   string `json:"message" mapstructure:"message"`
	ID        string `json:"id" mapstructure:"id"`
	Action    string `json:"action" mapstructure:"action"`
	Next      string `json:"next" mapstructure:"next"`
	NextState string `json:"nextState" mapstructure:"nextState"`
	To        string `json:"to" mapstructure:"to"`
}
