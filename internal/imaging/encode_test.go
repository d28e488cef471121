package imaging

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"path/filepath"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	img := createDiskImage(40, 30, 20, 15, 10, 255, 0)

	tests := []struct {
		name         string
		scale        float64
		wantW, wantH int
	}{
		{"native", 1.0, 40, 30},
		{"zero means native", 0, 40, 30},
		{"half", 0.5, 20, 15},
		{"double", 2.0, 80, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := EncodePNG(img, tt.scale)
			if err != nil {
				t.Fatalf("EncodePNG failed: %v", err)
			}
			if enc.Width != tt.wantW || enc.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", enc.Width, enc.Height, tt.wantW, tt.wantH)
			}
			if enc.MimeType != "image/png" {
				t.Errorf("MimeType: got %s", enc.MimeType)
			}

			raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
			if err != nil {
				t.Fatalf("base64: %v", err)
			}
			decoded, err := png.Decode(bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("png: %v", err)
			}
			if decoded.Bounds().Dx() != tt.wantW {
				t.Errorf("decoded width: got %d", decoded.Bounds().Dx())
			}
		})
	}
}

func TestEncodePNG_CollapsingScale(t *testing.T) {
	img := createUniformGray(4, 4, 0)
	if _, err := EncodePNG(img, 0.1); err == nil {
		t.Error("expected error for a scale that collapses the image")
	}
}

func TestSave(t *testing.T) {
	img := createDiskImage(40, 30, 20, 15, 10, 255, 0)
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.jpg"} {
		path := filepath.Join(dir, name)
		if err := Save(img, path); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
		info, err := LoadImageInfo(NewImageCache(), path)
		if err != nil {
			t.Fatalf("reloading %s failed: %v", name, err)
		}
		if info.Width != 40 || info.Height != 30 {
			t.Errorf("%s: got %dx%d, want 40x30", name, info.Width, info.Height)
		}
	}

	if err := Save(img, filepath.Join(dir, "out.unknown")); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}
