// Package mapping loads and validates label→image tables for mouth shapes
// and blink states. A table is read-only after Load and safe for concurrent
// reads during frame composition.
package mapping

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/normanking/lipsync/internal/timeline"
)

// Table maps single-letter labels to decoded overlay images. All images in
// a table share identical bounds, fixed by the first image loaded.
type Table struct {
	source string
	images map[string]image.Image
	width  int
	height int
}

// Load reads a two-column CSV (label, image path) and decodes every
// referenced PNG. Image paths are resolved relative to the CSV's directory,
// matching how mapping files are authored next to their art.
func Load(path string) (*Table, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, &MappingError{Source: path, Reason: "cannot open", Err: err}
	}
	defer fd.Close()

	rd := csv.NewReader(fd)
	rd.FieldsPerRecord = -1 // row arity validated per record for row identity in errors

	records, err := rd.ReadAll()
	if err != nil {
		return nil, &MappingError{Source: path, Reason: "malformed csv", Err: err}
	}

	t := &Table{
		source: path,
		images: make(map[string]image.Image, len(records)),
	}
	dir := filepath.Dir(path)

	for i, rec := range records {
		row := i + 1
		if len(rec) != 2 {
			return nil, &MappingError{
				Source: path, Row: row,
				Reason: fmt.Sprintf("expected 2 columns, got %d", len(rec)),
			}
		}
		label, imgPath := rec[0], filepath.Join(dir, rec[1])
		if label == "" {
			return nil, &MappingError{Source: path, Row: row, Reason: "empty label"}
		}
		if _, dup := t.images[label]; dup {
			return nil, &MappingError{
				Source: path, Row: row,
				Reason: fmt.Sprintf("duplicate label %q", label),
			}
		}

		img, err := decodePNG(imgPath)
		if err != nil {
			return nil, &MappingError{
				Source: path, Row: row,
				Reason: fmt.Sprintf("image %s unreadable", rec[1]),
				Err:    err,
			}
		}

		b := img.Bounds()
		if len(t.images) == 0 {
			t.width, t.height = b.Dx(), b.Dy()
		} else if b.Dx() != t.width || b.Dy() != t.height {
			return nil, &DimensionMismatchError{
				Path:  imgPath,
				Width: b.Dx(), Height: b.Dy(),
				WantW: t.width, WantH: t.height,
			}
		}

		t.images[label] = img
	}

	if len(t.images) == 0 {
		return nil, &MappingError{Source: path, Reason: "no rows"}
	}

	return t, nil
}

func decodePNG(path string) (image.Image, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return png.Decode(fd)
}

// Resolve returns the image for a label.
func (t *Table) Resolve(label string) (image.Image, error) {
	img, ok := t.images[label]
	if !ok {
		return nil, &UnknownLabelError{Label: label, Source: t.source}
	}
	return img, nil
}

// Validate checks that every label the timeline references has an entry,
// so resolution failures surface before the first frame is composited.
func (t *Table) Validate(tl *timeline.Timeline) error {
	for _, label := range tl.Labels() {
		if _, ok := t.images[label]; !ok {
			return &UnknownLabelError{Label: label, Source: t.source}
		}
	}
	return nil
}

// Size returns the shared canvas dimensions of the table's images.
func (t *Table) Size() (w, h int) { return t.width, t.height }

// Source returns the mapping file the table was loaded from.
func (t *Table) Source() string { return t.source }

// Len returns the number of labels in the table.
func (t *Table) Len() int { return len(t.images) }
