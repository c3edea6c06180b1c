// Package split partitions clip names into disjoint test and validation sets.
package split

import (
	"math"

	"github.com/cyclopcam/pedset/pkg/coco"
)

// Fractions may sum to slightly more than 1 due to floating point representation
const sumTolerance = 1e-9

// Shuffler is satisfied by *math/rand.Rand.
// Always pass in an explicitly seeded source, so that splits are reproducible.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Result holds two disjoint subsets of the names that were split
type Result struct {
	Test       []string
	Validation []string
}

type Splitter struct {
	rng Shuffler
}

func New(rng Shuffler) *Splitter {
	return &Splitter{rng: rng}
}

// Split shuffles a copy of names, and returns the first floor(n*fTest) names as the test set,
// and the last floor(n*fVal) names as the validation set.
// Any configuration in which these two slices would overlap is rejected.
func (s *Splitter) Split(names []string, fTest, fVal float64) (Result, error) {
	if err := checkFraction("test", fTest); err != nil {
		return Result{}, err
	}
	if err := checkFraction("validation", fVal); err != nil {
		return Result{}, err
	}
	if fTest+fVal > 1+sumTolerance {
		return Result{}, coco.Errorf(coco.ErrConfiguration, "test fraction %v + validation fraction %v exceeds 1", fTest, fVal)
	}

	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			return Result{}, coco.Errorf(coco.ErrConfiguration, "dataset name '%v' appears more than once", n)
		}
		seen[n] = true
	}

	shuffled := append([]string{}, names...)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	kTest := int(math.Floor(float64(n) * fTest))
	kVal := int(math.Floor(float64(n) * fVal))
	if kTest+kVal > n {
		return Result{}, coco.Errorf(coco.ErrConfiguration, "test set of %v and validation set of %v would overlap in %v datasets", kTest, kVal, n)
	}

	return Result{
		Test:       shuffled[:kTest],
		Validation: shuffled[n-kVal:],
	}, nil
}

func checkFraction(name string, f float64) error {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return coco.Errorf(coco.ErrConfiguration, "%v fraction must be between 0 and 1 (got %v)", name, f)
	}
	return nil
}
