// Package enginefactory selects a decoding engine by name.
package enginefactory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/h264grab/pkg/adapters/astiavengine"
	"github.com/user/h264grab/pkg/adapters/ffmpegengine"
	"github.com/user/h264grab/pkg/adapters/openh264"
	"github.com/user/h264grab/pkg/ports"
)

// Engine names.
const (
	Auto     = "auto"
	OpenH264 = "openh264"
	FFmpeg   = "ffmpeg"
	Astiav   = "astiav"
)

var (
	// ErrUnknownEngine is returned for names not in Names.
	ErrUnknownEngine = errors.New("enginefactory: unknown engine")

	// ErrNoEngine is returned by Auto when no engine is usable.
	ErrNoEngine = errors.New("enginefactory: no decoding engine available")
)

// Names lists the accepted engine names.
func Names() []string {
	return []string{Auto, OpenH264, FFmpeg, Astiav}
}

// Options carries engine-specific settings.
type Options struct {
	OpenH264Library string
	FFmpegPath      string
}

// Availability reports which engines can be created in this environment.
type Availability struct {
	OpenH264 func(openh264.Options) bool
	FFmpeg   func(string) bool
	Astiav   bool
}

// DefaultAvailability checks the real environment.
func DefaultAvailability() Availability {
	return Availability{
		OpenH264: openh264.Available,
		FFmpeg:   ffmpegengine.Available,
		Astiav:   astiavengine.Built,
	}
}

// New returns the named engine. "auto" (or "") prefers OpenH264, then
// ffmpeg, then libavcodec.
func New(name string, opts Options, logger ports.Logger) (ports.DecoderEngine, error) {
	return NewWithAvailability(name, opts, DefaultAvailability(), logger)
}

// NewWithAvailability is New with an explicit Availability.
func NewWithAvailability(name string, opts Options, avail Availability, logger ports.Logger) (ports.DecoderEngine, error) {
	log := logger.WithComponent("engine")

	switch strings.ToLower(name) {
	case OpenH264:
		return openh264.New(openh264.Options{LibraryPath: opts.OpenH264Library}), nil
	case FFmpeg:
		return ffmpegengine.New(ffmpegengine.Options{FFmpegPath: opts.FFmpegPath}), nil
	case Astiav:
		return astiavengine.New(), nil
	case Auto, "":
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownEngine, name, strings.Join(Names(), ", "))
	}

	if avail.OpenH264 != nil && avail.OpenH264(openh264.Options{LibraryPath: opts.OpenH264Library}) {
		log.Debug("Selected engine %s", OpenH264)
		return openh264.New(openh264.Options{LibraryPath: opts.OpenH264Library}), nil
	}
	if avail.FFmpeg != nil && avail.FFmpeg(opts.FFmpegPath) {
		log.Debug("Selected engine %s", FFmpeg)
		return ffmpegengine.New(ffmpegengine.Options{FFmpegPath: opts.FFmpegPath}), nil
	}
	if avail.Astiav {
		log.Debug("Selected engine %s", Astiav)
		return astiavengine.New(), nil
	}
	return nil, fmt.Errorf("%w: install OpenH264 (or set %s) or ffmpeg", ErrNoEngine, openh264.EnvLibrary)
}
