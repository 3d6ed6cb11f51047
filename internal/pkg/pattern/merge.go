package pattern

// StepKind distinguishes byte-comparison steps from label skips.
type StepKind uint8

const (
	// StepCompare matches a run of encoded bytes at the cursor.
	StepCompare StepKind = iota

	// StepSkipLabel advances the cursor past exactly one label.
	StepSkipLabel
)

// Step is one unit of generated matching work. A compare step carries
// the concatenated wire encodings of one or more consecutive literal
// labels; label boundaries inside the run are invisible to the
// generated code because the embedded length bytes are compared like
// any other byte.
type Step struct {
	Kind  StepKind
	Bytes []EncodedByte

	// Final marks the last step of a pattern. A final compare step
	// omits the trailing cursor advance since no later step reads the
	// cursor. Decided here, once, so emitters never re-derive it.
	Final bool
}

// Steps merges the pattern's labels into the minimal step sequence:
// consecutive literal labels coalesce byte-for-byte into one compare
// run, wildcards close the open run and stand alone. Order is
// preserved and no bytes are lost.
func (p Pattern) Steps() []Step {
	var steps []Step
	var run []EncodedByte

	flush := func() {
		if len(run) > 0 {
			steps = append(steps, Step{Kind: StepCompare, Bytes: run})
			run = nil
		}
	}

	for _, l := range p.Labels {
		switch l.Kind {
		case LabelWildcard:
			flush()
			steps = append(steps, Step{Kind: StepSkipLabel})
		case LabelLiteral:
			run = append(run, encodeLiteral(l.Text)...)
		}
	}
	flush()

	if len(steps) > 0 {
		steps[len(steps)-1].Final = true
	}
	return steps
}
