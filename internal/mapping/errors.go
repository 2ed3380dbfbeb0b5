package mapping

import "fmt"

// MappingError reports a defect in a mapping table source: a malformed row,
// a duplicated label, or an image that cannot be read or decoded. These are
// authoring errors and are never retried.
type MappingError struct {
	Source string // mapping file path
	Row    int    // 1-based row within the file, 0 when not row-specific
	Reason string
	Err    error
}

func (e *MappingError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("mapping %s row %d: %s", e.Source, e.Row, e.Reason)
	}
	return fmt.Sprintf("mapping %s: %s", e.Source, e.Reason)
}

func (e *MappingError) Unwrap() error { return e.Err }

// UnknownLabelError reports a timeline label with no entry in its table.
type UnknownLabelError struct {
	Label  string
	Source string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("label %q not present in mapping %s", e.Label, e.Source)
}

// DimensionMismatchError reports an overlay image whose bounds disagree with
// the canvas established by the background or the first loaded overlay. The
// check runs at load time so a long render cannot fail halfway through.
type DimensionMismatchError struct {
	Path          string
	Width, Height int
	WantW, WantH  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("image %s is %dx%d, want %dx%d",
		e.Path, e.Width, e.Height, e.WantW, e.WantH)
}
