package event

const (
	// defaultEnabled turns the bus on
	defaultEnabled = true
	// defaultMaxSubscribers caps handlers per topic, 0 means unlimited
	defaultMaxSubscribers = 64
)
