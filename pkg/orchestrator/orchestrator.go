// Package orchestrator drives a run: read the input, feed its units to a
// decoding session until the first picture, convert it and write the raster.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/ideamans/go-l10n"

	"github.com/user/h264grab/pkg/adapters/mp4source"
	"github.com/user/h264grab/pkg/annexb"
	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/pipeline"
	"github.com/user/h264grab/pkg/ports"
	"github.com/user/h264grab/pkg/session"
	"github.com/user/h264grab/pkg/summarizer"
)

var (
	// ErrIO is returned when reading the input or writing an output fails.
	ErrIO = errors.New("orchestrator: i/o failure")

	// ErrEncodeOutput is returned when the raster encoder fails.
	ErrEncodeOutput = errors.New("orchestrator: encode output failed")
)

// Container names reported in RunResult.
const (
	ContainerAnnexB = "annexb"
	ContainerMP4    = "mp4"
)

// Config contains all configuration for a run.
type Config struct {
	InputPath  string
	OutputPath string

	// Decoding
	Engine           string
	TraceLevel       ports.TraceLevel
	ErrorConcealment bool

	// Output
	Format   ports.RasterFormat
	Quality  int
	MaxWidth int
	Annotate bool

	// ReportPath enables the run report (.json for JSON, Markdown otherwise).
	ReportPath string

	// Version is printed in the report footer.
	Version string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputPath: "frame.ppm",
		Engine:     "auto",
		TraceLevel: ports.TraceQuiet,
		Format:     ports.FormatPPM,
	}
}

// EngineFactory returns a fresh engine for the given name.
type EngineFactory func(name string) (ports.DecoderEngine, error)

// Orchestrator coordinates the execution of a run.
type Orchestrator struct {
	engines      EngineFactory
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertResult]
	outputStage  pipeline.Stage[pipeline.OutputInput, pipeline.OutputResult]
	fs           ports.FileSystem
	sink         ports.DebugSink
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	engines EngineFactory,
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertResult],
	outputStage pipeline.Stage[pipeline.OutputInput, pipeline.OutputResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		engines:      engines,
		convertStage: convertStage,
		outputStage:  outputStage,
		fs:           fs,
		sink:         sink,
		logger:       logger,
	}
}

// Run executes the complete pipeline. A stream that yields no picture is not
// an error: RunResult.Decoded is false and no output file is written.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	result := RunResult{}

	// 1. Read input
	data, err := o.fs.ReadFile(config.InputPath)
	if err != nil {
		o.logger.Error(l10n.F("Failed to read input: %s", err))
		return result, fmt.Errorf("%w: read input: %w", ErrIO, err)
	}
	result.InputBytes = len(data)

	stream := data
	result.Container = ContainerAnnexB
	if mp4source.IsMP4(data) {
		extracted, info, err := mp4source.Extract(data, mp4source.Options{})
		if err != nil {
			o.logger.Error(l10n.F("Failed to read MP4 input: %s", err))
			return result, fmt.Errorf("unwrap mp4: %w", err)
		}
		o.logger.Info(l10n.F("MP4 input: track %d, %d samples", info.TrackID, info.Samples))
		stream = extracted
		result.Container = ContainerMP4
	}

	// 2. Scan units
	units := ListUnits(stream)
	stats := CountUnits(units)
	result.UnitsScanned = stats.Units
	result.ParameterSets = stats.ParameterSets
	result.Slices = stats.Slices
	o.logger.Info(l10n.F("Found %d NAL units (%d parameter sets, %d slices)", stats.Units, stats.ParameterSets, stats.Slices))

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(units, "", "  "); err == nil {
			o.saveDebug("units.json", o.sink.SaveUnitsJSON(data))
		}
	}

	// 3. Decode
	engine, err := o.engines(config.Engine)
	if err != nil {
		o.logger.Error(l10n.F("Failed to select engine: %s", err))
		return result, fmt.Errorf("select engine: %w", err)
	}
	result.Engine = engine.Name()

	sess, err := session.New(engine, session.Config{
		Engine:     ports.EngineConfig{ErrorConcealment: config.ErrorConcealment},
		TraceLevel: config.TraceLevel,
	}, o.logger)
	if err != nil {
		o.logger.Error(l10n.F("Failed to open decoder session: %s", err))
		return result, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			o.logger.Warn(l10n.F("Failed to close decoder session: %s", err))
		}
	}()

	o.logger.Info(l10n.F("Decoding with %s", result.Engine))

	var dec Decoder = sess
	if o.sink.Enabled() {
		dec = &recordingDecoder{Decoder: sess, o: o}
	}

	frame, err := FirstFrame(ctx, stream, dec)
	result.UnitsSubmitted = frame.UnitsSubmitted
	if err != nil {
		o.logger.Error(l10n.F("Failed to decode: %s", err))
		return result, fmt.Errorf("decode: %w", err)
	}

	if !frame.Found {
		o.logger.Info(l10n.F("No frame decoded after %d units", frame.UnitsSubmitted))
		if err := o.writeReport(config, result); err != nil {
			return result, err
		}
		return result, nil
	}

	result.Decoded = true
	result.FrameUnit = frame.UnitIndex
	result.Width = frame.Picture.Width
	result.Height = frame.Picture.Height
	result.Strides = frame.Picture.Strides
	o.logger.Info(l10n.F("Decoded %dx%d picture at unit %d", result.Width, result.Height, frame.UnitIndex))

	// The picture is still borrowed from the session here.
	if o.sink.Enabled() {
		o.saveDebug("picture", o.sink.SavePicture(*frame.Picture))
		o.saveDebug("raster", o.sink.SaveRaster(frame.Raster))
	}

	// 4. Convert
	convertInput := pipeline.ConvertInput{
		Raster:   frame.Raster,
		MaxWidth: config.MaxWidth,
	}
	if config.Annotate {
		convertInput.Caption = Caption(result.Width, result.Height, result.Engine, frame.UnitIndex)
	}
	converted, err := o.convertStage.Execute(ctx, convertInput)
	if err != nil {
		o.logger.Error(l10n.F("Failed to convert picture: %s", err))
		return result, fmt.Errorf("convert stage: %w", err)
	}
	result.OutputWidth = converted.Width
	result.OutputHeight = converted.Height
	result.Resized = converted.Resized
	result.Annotated = convertInput.Caption != ""

	// 5. Encode
	encoded, err := o.outputStage.Execute(ctx, pipeline.OutputInput{
		Image:   converted.Image,
		Format:  config.Format,
		Quality: config.Quality,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to encode output: %s", err))
		return result, fmt.Errorf("%w: %w", ErrEncodeOutput, err)
	}

	// 6. Write output file
	if err := o.fs.WriteFile(config.OutputPath, encoded.Data); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return result, fmt.Errorf("%w: write output: %w", ErrIO, err)
	}
	result.OutputPath = config.OutputPath
	result.OutputBytes = len(encoded.Data)
	result.Format = encoded.Format
	o.logger.Info(l10n.F("Wrote %s (%d bytes)", config.OutputPath, len(encoded.Data)))

	if err := o.writeReport(config, result); err != nil {
		return result, err
	}
	return result, nil
}

func (o *Orchestrator) saveDebug(what string, err error) {
	if err != nil {
		o.logger.Warn(l10n.F("Failed to save debug %s: %s", what, err))
	}
}

func (o *Orchestrator) writeReport(config Config, result RunResult) error {
	if config.ReportPath == "" {
		return nil
	}

	formatter := summarizer.FormatterForPath(config.ReportPath,
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(config.Version),
	)
	writer := summarizer.NewWriter(formatter, o.fs)
	if err := writer.Write(config.ReportPath, BuildSummary(config, result)); err != nil {
		o.logger.Error(l10n.F("Failed to write report: %s", err))
		return fmt.Errorf("%w: write report: %w", ErrIO, err)
	}
	o.logger.Info(l10n.F("Report saved to %s", config.ReportPath))
	return nil
}

// recordingDecoder saves every unit to the debug sink before decoding it.
type recordingDecoder struct {
	Decoder
	o     *Orchestrator
	index int
}

func (d *recordingDecoder) Decode(nal []byte) (*picture.Picture, error) {
	d.o.saveDebug("unit", d.o.sink.SaveUnit(d.index, nal))
	d.index++
	return d.Decoder.Decode(nal)
}

func (d *recordingDecoder) Flush() (*picture.Picture, error) {
	if f, ok := d.Decoder.(Flusher); ok {
		return f.Flush()
	}
	return nil, nil
}

// Caption returns the text of the caption bar.
func Caption(width, height int, engine string, unitIndex int) string {
	return fmt.Sprintf("%dx%d %s unit %d", width, height, engine, unitIndex)
}

// BuildSummary converts a run into a report.
func BuildSummary(config Config, result RunResult) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithInput(summarizer.InputInfo{
			Path:      config.InputPath,
			Bytes:     result.InputBytes,
			Container: result.Container,
		}).
		WithStream(summarizer.StreamInfo{
			Units:         result.UnitsScanned,
			ParameterSets: result.ParameterSets,
			Slices:        result.Slices,
			Submitted:     result.UnitsSubmitted,
		}).
		WithDecode(summarizer.DecodeInfo{
			Engine:    result.Engine,
			Decoded:   result.Decoded,
			UnitIndex: result.FrameUnit,
			Width:     result.Width,
			Height:    result.Height,
			StrideY:   result.Strides[0],
			StrideUV:  result.Strides[1],
		})

	if result.Decoded {
		b.WithOutput(summarizer.OutputInfo{
			Path:      result.OutputPath,
			Format:    result.Format.String(),
			Width:     result.OutputWidth,
			Height:    result.OutputHeight,
			Bytes:     result.OutputBytes,
			Resized:   result.Resized,
			Annotated: result.Annotated,
		})
	}
	return b.Build()
}

// RunResult contains the results of a run for reporting.
type RunResult struct {
	// Decoded is false when no unit produced a picture.
	Decoded bool

	// Input information
	InputBytes int
	Container  string

	// Stream information
	UnitsScanned   int
	ParameterSets  int
	Slices         int
	UnitsSubmitted int

	// Decode information
	Engine    string
	FrameUnit int
	Width     int
	Height    int
	Strides   [2]int

	// Output information
	OutputPath   string
	Format       ports.RasterFormat
	OutputWidth  int
	OutputHeight int
	OutputBytes  int
	Resized      bool
	Annotated    bool
}

// UnitInfo describes one NAL unit of a stream.
type UnitInfo struct {
	Index     int    `json:"index"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
	PrefixLen int    `json:"prefixLen"`
	Type      int    `json:"type"`
	TypeName  string `json:"typeName"`
}

// ListUnits describes every unit of stream without decoding it.
func ListUnits(stream []byte) []UnitInfo {
	infos := []UnitInfo{}
	index := 0
	for u := range annexb.Units(stream) {
		infos = append(infos, UnitInfo{
			Index:     index,
			Offset:    u.Offset,
			Length:    len(u.Data),
			PrefixLen: u.PrefixLen(),
			Type:      int(u.Type()),
			TypeName:  u.Type().String(),
		})
		index++
	}
	return infos
}

// UnitStats counts units by kind.
type UnitStats struct {
	Units         int
	ParameterSets int
	Slices        int
}

// CountUnits tallies a unit listing.
func CountUnits(units []UnitInfo) UnitStats {
	stats := UnitStats{Units: len(units)}
	for _, u := range units {
		switch t := h264.NALUType(u.Type); {
		case t == h264.NALUTypeSPS || t == h264.NALUTypePPS:
			stats.ParameterSets++
		case t >= h264.NALUTypeNonIDR && t <= h264.NALUTypeIDR:
			stats.Slices++
		}
	}
	return stats
}
