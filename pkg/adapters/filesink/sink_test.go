package filesink

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/user/h264grab/pkg/mocks"
	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.RasterEncoder{})

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveUnit(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.RasterEncoder{})

	data := []byte{0, 0, 0, 1, 0x67, 0x42}
	if err := sink.SaveUnit(3, data); err != nil {
		t.Fatalf("SaveUnit failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "units", "unit-0003.h264")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %v, got %v", data, saved)
	}
}

func TestSink_SavePicture(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.RasterEncoder{})

	pic := picture.Picture{
		Width:   2,
		Height:  2,
		Strides: [2]int{4, 2},
		Y:       []byte{1, 2, 9, 9, 3, 4, 9, 9},
		U:       []byte{5, 9},
		V:       []byte{6, 9},
	}
	if err := sink.SavePicture(pic); err != nil {
		t.Fatalf("SavePicture failed: %v", err)
	}
	if err := sink.SavePicture(pic); err != nil {
		t.Fatalf("SavePicture failed: %v", err)
	}

	saved, ok := fs.GetFile(filepath.Join(testBaseDir, "picture-2x2.yuv"))
	if !ok {
		t.Fatal("expected picture to be saved")
	}
	if string(saved) != string([]byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("expected packed planes, got %v", saved)
	}
	if _, ok := fs.GetFile(filepath.Join(testBaseDir, "picture-2x2-1.yuv")); !ok {
		t.Error("expected second picture to get a suffix")
	}
}

func TestSink_SavePictureInvalid(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.RasterEncoder{})

	if err := sink.SavePicture(picture.Picture{}); err == nil {
		t.Error("expected error for empty picture")
	}
}

func TestSink_SaveRaster(t *testing.T) {
	fs := mocks.NewFileSystem()
	raster := &mocks.RasterEncoder{}
	sink := New(testBaseDir, fs, raster)

	if err := sink.SaveRaster(image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("SaveRaster failed: %v", err)
	}

	if len(raster.EncodeCalls) != 1 {
		t.Fatalf("expected 1 encode call, got %d", len(raster.EncodeCalls))
	}
	call := raster.EncodeCalls[0]
	if call.Format != ports.FormatPNG || call.Width != 8 || call.Height != 6 {
		t.Errorf("unexpected encode call %+v", call)
	}
	if _, ok := fs.GetFile(filepath.Join(testBaseDir, "frame.png")); !ok {
		t.Error("expected frame.png to be saved")
	}
}

func TestSink_SaveUnitsJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.RasterEncoder{})

	data := []byte(`[{"index":0}]`)
	if err := sink.SaveUnitsJSON(data); err != nil {
		t.Fatalf("SaveUnitsJSON failed: %v", err)
	}

	saved, ok := fs.GetFile(filepath.Join(testBaseDir, "units.json"))
	if !ok {
		t.Fatal("expected units.json to be saved")
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}
