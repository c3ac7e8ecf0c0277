package runner

// Decision is the outcome of the checkpoint gate
type Decision int

const (
	// Train builds a fresh model and saves it to the checkpoint path
	Train Decision = iota
	// Load restores the model from the checkpoint path
	Load
)

func (d Decision) String() string {
	switch d {
	case Train:
		return "train"
	case Load:
		return "load"
	}
	return "unknown"
}

// Decide trains when no checkpoint exists and loads otherwise
func Decide(exists bool) Decision {
	if exists {
		return Load
	}
	return Train
}
