package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadCSV reads a Split from lines of the format:
//
//	<label>, ..., <label>, value, value, ...
//
// with 'labelCols' labels at the start of every line. Every input value is divided by 'scale'
// (for example, 255 for 8-bit pixels). All lines must have the same number of fields.
func ReadCSV(r io.Reader, labelCols int, scale float64) (*Split, error) {
	if labelCols < 1 {
		return nil, errors.Errorf("Can't read CSV, must have at least one label column (%d)", labelCols)
	} else if scale == 0 {
		return nil, errors.Errorf("Can't read CSV, scale must not be zero")
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var inputs []float64
	var labels []int
	var n int

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "Can't read CSV line %d\n", n+1)
		}

		if len(rec) <= labelCols {
			return nil, errors.Errorf("Line %d has %d fields, need more than %d", n+1, len(rec), labelCols)
		}

		for i, s := range rec[:labelCols] {
			y, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, errors.Wrapf(err, "Couldn't parse label %d on line %d\n", i, n+1)
			}
			labels = append(labels, y)
		}

		for i, s := range rec[labelCols:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "Couldn't parse value %d on line %d\n", i, n+1)
			}
			inputs = append(inputs, v/scale)
		}

		n++
	}

	if n == 0 {
		return nil, errors.Errorf("Can't read CSV, no lines")
	}

	return NewSplit(inputs, labels, n)
}
