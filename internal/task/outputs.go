package task

// Outputs collects the outputs produced during one run, addressable by
// definition and by task name.
type Outputs struct {
	byDef  map[*Definition]any
	byName map[string]*Definition
}

// NewOutputs returns an empty collection.
func NewOutputs() *Outputs {
	return &Outputs{
		byDef:  make(map[*Definition]any),
		byName: make(map[string]*Definition),
	}
}

// Set records the output of d. A later Set for the same definition
// overwrites the earlier one.
func (o *Outputs) Set(d *Definition, v any) {
	o.byDef[d] = v
	o.byName[d.Name] = d
}

// Of returns the output of d in this run.
func (o *Outputs) Of(d *Definition) (any, error) {
	v, ok := o.byDef[d]
	if !ok {
		return nil, &OutputNotReadyError{Task: d.Name}
	}
	return v, nil
}

// Output returns the output of the most recently run task called name.
func (o *Outputs) Output(name string) (any, error) {
	d, ok := o.byName[name]
	if !ok {
		return nil, &OutputNotReadyError{Task: name}
	}
	return o.byDef[d], nil
}

// Len returns the number of distinct definitions that produced output.
func (o *Outputs) Len() int { return len(o.byDef) }
