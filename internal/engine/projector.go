package engine

// Projector computes a Field from a battle journal.
type Projector struct{}

// NewProjector creates a standard projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Build folds the events onto an empty field.
func (p *Projector) Build(events []Event) (*Field, error) {
	field := NewField()
	return p.Apply(field, events)
}

// Apply folds the events onto an existing field.
func (p *Projector) Apply(field *Field, events []Event) (*Field, error) {
	for _, evt := range events {
		if err := evt.Apply(field); err != nil {
			return nil, err
		}
	}
	return field, nil
}
