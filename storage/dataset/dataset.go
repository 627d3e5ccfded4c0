// Package dataset reads workload datasets from YAML or JSON files.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/workload"
)

// Formats
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("dataset files must be .yaml, .yml or .json")

type Format string

// FormatOf guesses the format of a dataset file from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", ErrUnknownFormat
}

// ReadFile reads and checks the dataset at path.
func ReadFile(path string) (workload.Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return workload.Dataset{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return workload.Dataset{}, errors.Wrap(err, "opening dataset")
	}
	defer func() { _ = f.Close() }()
	return Read(f, format)
}

// Read decodes a dataset, fills defaults and checks it: every record must be valid and ids unique per collection.
// Unknown keys are rejected. Dangling references are accepted.
func Read(r io.Reader, format Format) (workload.Dataset, error) {
	var ds workload.Dataset
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&ds); err != nil && err != io.EOF {
			return workload.Dataset{}, errors.Wrap(err, "decoding yaml dataset")
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil && err != io.EOF {
			return workload.Dataset{}, errors.Wrap(err, "decoding json dataset")
		}
	default:
		return workload.Dataset{}, ErrUnknownFormat
	}

	clean(&ds)
	if err := check(ds); err != nil {
		return workload.Dataset{}, err
	}
	return ds, nil
}

// Encode writes ds in format. Its output can be read back with Read.
func Encode(w io.Writer, ds workload.Dataset, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return errors.Wrap(err, "encoding yaml dataset")
		}
		return errors.Wrap(enc.Close(), "encoding yaml dataset")
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return errors.Wrap(err, "encoding json dataset")
		}
		_, err := w.Write(buf.Bytes())
		return errors.Wrap(err, "writing json dataset")
	}
	return ErrUnknownFormat
}

func clean(ds *workload.Dataset) {
	for i := range ds.Teachers {
		t := &ds.Teachers[i]
		t.ID = core.CleanString(t.ID)
		t.Name = core.CleanString(t.Name)
		t.Specialization = core.CleanString(t.Specialization)
	}
	for i := range ds.Subjects {
		ds.Subjects[i].ID = core.CleanString(ds.Subjects[i].ID)
		ds.Subjects[i].Name = core.CleanString(ds.Subjects[i].Name)
	}
	for i := range ds.Classrooms {
		c := &ds.Classrooms[i]
		c.ID = core.CleanString(c.ID)
		c.Name = core.CleanString(c.Name)
		c.Level = core.CleanString(c.Level)
	}
	for i := range ds.Assignments {
		a := &ds.Assignments[i]
		a.ID = core.CleanString(a.ID)
		a.TeacherID = core.CleanString(a.TeacherID)
		a.SubjectID = core.CleanString(a.SubjectID)
		a.ClassroomID = core.CleanString(a.ClassroomID)
		a.Semester = workload.Semester(core.CleanString(string(a.Semester), true /* lower */))
		a.Status = workload.Status(core.CleanString(string(a.Status), true /* lower */))
		if a.Status == "" {
			a.Status = workload.StatusActive
		}
		a.CreatedAt = a.CreatedAt.UTC()
	}
}

// check collects every invalid field, named after its record (eg. "teachers[2].max_load").
func check(ds workload.Dataset) error {
	var flds []core.FieldError
	ids := make(map[string]struct{})

	validate := func(collection string, i int, id string, record interface{}) {
		prefix := fmt.Sprintf("%s[%d].", collection, i)
		if err := core.TranslateValidationErrors(core.Validate.Struct(record)); err != nil {
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				flds = append(flds, core.FieldError{Field: prefix[:len(prefix)-1], Error: err.Error()})
				return
			}
			for _, fErr := range vErr.Fields {
				flds = append(flds, core.FieldError{Field: prefix + fErr.Field, Error: fErr.Error})
			}
		}
		key := collection + "/" + id
		if _, dup := ids[key]; dup && id != "" {
			flds = append(flds, core.FieldError{Field: prefix + "id", Error: workload.ErrDuplicateReference.Error()})
		}
		ids[key] = struct{}{}
	}

	for i, t := range ds.Teachers {
		validate("teachers", i, t.ID, t)
	}
	for i, s := range ds.Subjects {
		validate("subjects", i, s.ID, s)
	}
	for i, c := range ds.Classrooms {
		validate("classrooms", i, c.ID, c)
	}
	for i, a := range ds.Assignments {
		validate("assignments", i, a.ID, a)
	}

	if len(flds) > 0 {
		return core.NewValidationError(errors.Errorf("invalid dataset: %d error(s)", len(flds)), flds...)
	}
	return nil
}
