// Package astiavengine decodes H.264 in-process with libavcodec through
// go-astiav. It needs cgo and the FFmpeg 7 development libraries, so it is
// only compiled with the "astiav" build tag; without it Create reports
// ports.ErrMissingCapability.
package astiavengine

import "errors"

// ErrNotBuilt is returned when the binary was built without the astiav tag.
var ErrNotBuilt = errors.New("astiavengine: built without the astiav tag")
