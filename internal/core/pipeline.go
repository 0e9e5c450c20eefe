package core

// Pipeline runs Parse, Transform and Serialize in sequence.
type Pipeline struct {
	Engine Engine
}

// Run formats src with the default pipeline.
func Run(src Source, opts FormattingOptions) (*Artifact, error) {
	return Pipeline{}.Run(src, opts)
}

// Run parses src, applies opts and serializes the result. A parse failure is
// returned unchanged and nothing is serialized.
func (p Pipeline) Run(src Source, opts FormattingOptions) (*Artifact, error) {
	_, art, err := p.Process(src, opts)
	return art, err
}

// Process is Run that also returns the transformed dataset, for callers that
// show a preview next to the download.
func (p Pipeline) Process(src Source, opts FormattingOptions) (*Dataset, *Artifact, error) {
	ds, err := Parse(src)
	if err != nil {
		return nil, nil, err
	}

	out := p.Engine.Transform(ds, opts)

	art, err := Serialize(out, src.Name)
	if err != nil {
		return nil, nil, err
	}
	return out, art, nil
}
