package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/stretchr/testify/require"
)

// reverser is a Shuffler with a known permutation
type reverser struct{}

func (reverser) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func clipNames(n int) []string {
	names := []string{}
	for i := 0; i < n; i++ {
		names = append(names, fmt.Sprintf("clip%02d", i))
	}
	return names
}

func TestSplitDisjoint(t *testing.T) {
	names := clipNames(10)
	r, err := New(rand.New(rand.NewSource(1))).Split(names, 0.7, 0.3)
	require.NoError(t, err)
	require.Len(t, r.Test, 7)
	require.Len(t, r.Validation, 3)

	union := map[string]bool{}
	for _, n := range r.Test {
		union[n] = true
	}
	for _, n := range r.Validation {
		require.False(t, union[n], "%v is in both sets", n)
		union[n] = true
	}
	require.Len(t, union, 10)
	for _, n := range names {
		require.True(t, union[n])
	}
}

func TestSplitExactMembership(t *testing.T) {
	r, err := New(reverser{}).Split(clipNames(5), 0.4, 0.4)
	require.NoError(t, err)
	require.Equal(t, []string{"clip04", "clip03"}, r.Test)
	require.Equal(t, []string{"clip01", "clip00"}, r.Validation)
}

func TestSplitIsReproducible(t *testing.T) {
	names := clipNames(20)
	a, err := New(rand.New(rand.NewSource(42))).Split(names, 0.5, 0.25)
	require.NoError(t, err)
	b, err := New(rand.New(rand.NewSource(42))).Split(names, 0.5, 0.25)
	require.NoError(t, err)
	require.Equal(t, a, b)
	// The input is left untouched
	require.Equal(t, clipNames(20), names)
}

func TestSplitRejectsBadFractions(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	for _, f := range [][2]float64{{0.8, 0.3}, {-0.1, 0.5}, {0.5, 1.5}, {math.NaN(), 0}, {1, 0.01}} {
		_, err := s.Split(clipNames(10), f[0], f[1])
		require.True(t, errors.Is(err, coco.ErrConfiguration), "%v", f)
	}
	_, err := s.Split([]string{"a", "b", "a"}, 0.5, 0.5)
	require.True(t, errors.Is(err, coco.ErrConfiguration))
}

func TestSplitEdges(t *testing.T) {
	s := New(rand.New(rand.NewSource(3)))
	r, err := s.Split(nil, 0.7, 0.3)
	require.NoError(t, err)
	require.Empty(t, r.Test)
	require.Empty(t, r.Validation)

	r, err = s.Split(clipNames(3), 1, 0)
	require.NoError(t, err)
	require.Len(t, r.Test, 3)
	require.Empty(t, r.Validation)

	// Floors round small sets down: 3*0.5 = 1.5 -> 1 each, one name left out
	r, err = s.Split(clipNames(3), 0.5, 0.5)
	require.NoError(t, err)
	require.Len(t, r.Test, 1)
	require.Len(t, r.Validation, 1)
	require.NotEqual(t, r.Test[0], r.Validation[0])
}
