// Package evaluate runs motion comparisons over whole directories of reference and candidate
// files and turns the results into reports.
package evaluate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrFileSetMismatch is returned when the reference and candidate directories do not hold the
// same file names. No pair is evaluated in that case.
var ErrFileSetMismatch = errors.New("file names in reference and candidate directories do not match")

// Pair is a reference file and the candidate file sharing its base name.
type Pair struct {
	Name          string
	ReferencePath string
	CandidatePath string
}

// ListPairs matches the regular files of two directories by name. The result is sorted by name.
func ListPairs(referenceDir, candidateDir string) ([]Pair, error) {
	refNames, err := listFiles(referenceDir)
	if err != nil {
		return nil, err
	}
	candNames, err := listFiles(candidateDir)
	if err != nil {
		return nil, err
	}

	onlyRef, onlyCand := lo.Difference(refNames, candNames)
	if len(onlyRef) > 0 || len(onlyCand) > 0 {
		return nil, errors.Wrapf(ErrFileSetMismatch, "only in reference: [%s]; only in candidate: [%s]",
			strings.Join(onlyRef, ", "), strings.Join(onlyCand, ", "))
	}

	pairs := make([]Pair, len(refNames))
	for i, name := range refNames {
		pairs[i] = Pair{
			Name:          name,
			ReferencePath: filepath.Join(referenceDir, name),
			CandidatePath: filepath.Join(candidateDir, name),
		}
	}
	return pairs, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list %s", dir)
	}
	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
