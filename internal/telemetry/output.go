package telemetry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Output file names.
const (
	HitsFile      = "hits.csv"
	DigestionFile = "digestion.csv"
	SurveyFile    = "survey.csv"
)

// table appends records of one type to a CSV stream, writing the header once.
type table[T any] struct {
	w             io.Writer
	headerWritten bool
}

func (t *table[T]) write(records []T) error {
	if len(records) == 0 {
		return nil
	}
	if !t.headerWritten {
		if err := gocsv.Marshal(records, t.w); err != nil {
			return err
		}
		t.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, t.w)
}

// Output handles CSV logging of a run. A nil *Output discards every record.
type Output struct {
	dir   string
	files []*os.File

	hits      table[HitRecord]
	digestion table[DigestionRecord]
	survey    table[SurveyRecord]
}

// NewOutput creates dir and opens one CSV per record kind.
// Returns nil if dir is empty (output disabled).
//
// Postcondition: Returns a ready Output, nil, or a non-nil error.
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	o := &Output{dir: dir}
	for _, spec := range []struct {
		name string
		set  func(io.Writer)
	}{
		{HitsFile, func(w io.Writer) { o.hits.w = w }},
		{DigestionFile, func(w io.Writer) { o.digestion.w = w }},
		{SurveyFile, func(w io.Writer) { o.survey.w = w }},
	} {
		f, err := os.Create(filepath.Join(dir, spec.name))
		if err != nil {
			_ = o.Close()
			return nil, fmt.Errorf("creating %s: %w", spec.name, err)
		}
		o.files = append(o.files, f)
		spec.set(f)
	}
	return o, nil
}

// Dir returns the output directory, or "" for a nil Output.
func (o *Output) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

// WriteHits appends hit records to hits.csv.
func (o *Output) WriteHits(records ...HitRecord) error {
	if o == nil {
		return nil
	}
	if err := o.hits.write(records); err != nil {
		return fmt.Errorf("writing hits: %w", err)
	}
	return nil
}

// WriteDigestion appends digestion records to digestion.csv.
func (o *Output) WriteDigestion(records ...DigestionRecord) error {
	if o == nil {
		return nil
	}
	if err := o.digestion.write(records); err != nil {
		return fmt.Errorf("writing digestion: %w", err)
	}
	return nil
}

// WriteSurvey appends survey records to survey.csv.
func (o *Output) WriteSurvey(records ...SurveyRecord) error {
	if o == nil {
		return nil
	}
	if err := o.survey.write(records); err != nil {
		return fmt.Errorf("writing survey: %w", err)
	}
	return nil
}

// Close flushes and closes every file.
func (o *Output) Close() error {
	if o == nil {
		return nil
	}
	var errs []error
	for _, f := range o.files {
		errs = append(errs, f.Close())
	}
	o.files = nil
	return errors.Join(errs...)
}

// ReadHits parses a hits.csv stream.
func ReadHits(r io.Reader) ([]HitRecord, error) {
	var out []HitRecord
	if err := gocsv.Unmarshal(r, &out); err != nil {
		return nil, fmt.Errorf("reading hits: %w", err)
	}
	return out, nil
}
