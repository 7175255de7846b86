// Package summarizer builds the report of a run.
package summarizer

import "time"

// Summary contains all data collected during a run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `json:"generatedAt"`

	// Input file
	Input InputInfo `json:"input"`

	// Unit statistics
	Stream StreamInfo `json:"stream"`

	// Decoding outcome
	Decode DecodeInfo `json:"decode"`

	// Output raster, nil when nothing was written
	Output *OutputInfo `json:"output,omitempty"`
}

// InputInfo describes the input file.
type InputInfo struct {
	Path      string `json:"path"`
	Bytes     int    `json:"bytes"`
	Container string `json:"container"`
}

// StreamInfo contains unit counts.
type StreamInfo struct {
	Units         int `json:"units"`
	ParameterSets int `json:"parameterSets"`
	Slices        int `json:"slices"`

	// Submitted is the number of units handed to the engine.
	Submitted int `json:"submitted"`
}

// DecodeInfo describes the decoded picture.
type DecodeInfo struct {
	Engine    string `json:"engine"`
	Decoded   bool   `json:"decoded"`
	UnitIndex int    `json:"unitIndex"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	StrideY   int    `json:"strideY"`
	StrideUV  int    `json:"strideUV"`
}

// OutputInfo describes the written raster.
type OutputInfo struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int    `json:"bytes"`
	Resized   bool   `json:"resized"`
	Annotated bool   `json:"annotated"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input information.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithStream sets unit statistics.
func (b *Builder) WithStream(stream StreamInfo) *Builder {
	b.summary.Stream = stream
	return b
}

// WithDecode sets the decoding outcome.
func (b *Builder) WithDecode(decode DecodeInfo) *Builder {
	b.summary.Decode = decode
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = &output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
