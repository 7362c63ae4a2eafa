package dataset

import (
	"strconv"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Feature identifies a feature by name or by positional index.
type Feature struct {
	name   string
	index  int
	byName bool
}

// ByName identifies a feature by its resolved name.
func ByName(name string) Feature {
	return Feature{name: name, byName: true}
}

// ByIndex identifies a feature by its column position.
func ByIndex(i int) Feature {
	return Feature{index: i}
}

// String returns the name or the index as given.
func (f Feature) String() string {
	if f.byName {
		return f.name
	}
	return "#" + strconv.Itoa(f.index)
}

// Resolve returns the column index of f within names.
func (f Feature) Resolve(names []string) (int, error) {
	if !f.byName {
		if f.index < 0 || f.index >= len(names) {
			return 0, errors.NewConfigurationError("feature", "feature index out of range", f.index)
		}
		return f.index, nil
	}
	for i, n := range names {
		if n == f.name {
			return i, nil
		}
	}
	return 0, errors.NewConfigurationError("feature", "unknown feature name", f.name)
}
