package gpio

// FakeEdgeSource is a test double that replays scripted edges.
type FakeEdgeSource struct {
	handler EdgeHandler

	// Delivered contains every edge passed to the handler so far.
	Delivered []Edge

	// LevelValue is returned by Level.
	LevelValue bool

	// LevelError, if set, will be returned by Level().
	LevelError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeEdgeSource creates a FakeEdgeSource delivering to handler.
func NewFakeEdgeSource(handler EdgeHandler) *FakeEdgeSource {
	return &FakeEdgeSource{handler: handler}
}

// Play delivers edges to the handler synchronously, in order.
// Edges played after Close are dropped.
func (f *FakeEdgeSource) Play(edges ...Edge) {
	for _, e := range edges {
		if f.Closed {
			return
		}
		f.Delivered = append(f.Delivered, e)
		f.handler(e)
	}
}

// Level returns the scripted line state.
func (f *FakeEdgeSource) Level() (bool, error) {
	if f.LevelError != nil {
		return false, f.LevelError
	}
	return f.LevelValue, nil
}

// Close marks the source as closed.
func (f *FakeEdgeSource) Close() error {
	f.Closed = true
	return nil
}
