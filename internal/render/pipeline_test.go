package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	valid := Options{
		LipsPath:   "lips.csv",
		AudioPath:  "audio.wav",
		OutputPath: "out.mkv",
		FrameRate:  24,
	}

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{"valid", func(*Options) {}, ""},
		{"missing lips", func(o *Options) { o.LipsPath = "" }, "lip mapping"},
		{"missing audio", func(o *Options) { o.AudioPath = "" }, "audio"},
		{"missing output", func(o *Options) { o.OutputPath = "" }, "output"},
		{"zero frame rate", func(o *Options) { o.FrameRate = 0 }, "frame rate"},
		{"negative frame rate", func(o *Options) { o.FrameRate = -1 }, "frame rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadBackground(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 9, A: 255})
	fd, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(fd, img))
	require.NoError(t, fd.Close())

	got, err := loadBackground(path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Bounds().Dx())
	assert.Equal(t, 2, got.Bounds().Dy())
}

func TestLoadBackground_Missing(t *testing.T) {
	_, err := loadBackground(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestLoadBackground_NotPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	require.NoError(t, os.WriteFile(path, []byte("jpeg pretending"), 0644))

	_, err := loadBackground(path)
	assert.Error(t, err)
}
