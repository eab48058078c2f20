package retry

import "time"

// Presets tuned per call class. They are plain policies; the executor
// treats them like any other.
var (
	// ModelInference covers remote LLM completion calls: slow and
	// rate-limited, so wait long and escalate aggressively.
	ModelInference = Policy{
		MaxRetries:    6,
		InitialDelay:  60 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      600 * time.Second,
	}

	// SearchCall covers search-API calls, which fail and recover faster.
	SearchCall = Policy{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		BackoffFactor: 1.6,
		MaxDelay:      25 * time.Second,
	}

	// DatastoreCall covers local or regional datastore calls, where
	// failures are usually brief.
	DatastoreCall = Policy{
		MaxRetries:    5,
		InitialDelay:  time.Second,
		BackoffFactor: 1.5,
		MaxDelay:      10 * time.Second,
	}
)
