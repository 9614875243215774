package evaluate

import (
	"os"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Elapsed maps a file name to the seconds its candidate took to produce.
type Elapsed map[string]float64

// LoadElapsed reads a JSON5 object of file name to seconds. An empty path yields an empty map.
func LoadElapsed(path string) (Elapsed, error) {
	if path == "" {
		return Elapsed{}, nil
	}
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var elapsed Elapsed
	if err := json5.Unmarshal(data, &elapsed); err != nil {
		return nil, errors.Wrapf(err, "failed to decode elapsed times from %s", path)
	}
	if elapsed == nil {
		elapsed = Elapsed{}
	}
	return elapsed, nil
}

// Lookup returns the elapsed seconds for name.
func (e Elapsed) Lookup(name string) (float64, bool) {
	v, ok := e[name]
	return v, ok
}
