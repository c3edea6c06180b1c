package convert

import (
	"errors"
	"testing"

	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/source"
	"github.com/stretchr/testify/require"
)

// makeFrames creates n frames with non-contiguous frame numbers
func makeFrames(n int) []source.Frame {
	frames := make([]source.Frame, n)
	for i := range frames {
		frames[i] = source.Frame{Number: i*3 + 5, Boxes: []coco.BoundingBox{}}
	}
	return frames
}

func TestSampleCount(t *testing.T) {
	for n := 0; n <= 40; n++ {
		for jump := 0; jump <= 12; jump++ {
			frames := makeFrames(n)
			kept, skipped, err := Partition(frames, jump)
			require.NoError(t, err)
			expect := (n + jump) / (jump + 1) // ceil(n / (jump+1))
			require.Len(t, kept, expect, "n=%v jump=%v", n, jump)
			require.Len(t, skipped, n-expect)

			// The kept set is exactly the frames at positions that are multiples of jump+1
			k := 0
			for i, f := range frames {
				if i%(jump+1) == 0 {
					require.Equal(t, f, kept[k])
					k++
				}
			}
		}
	}
}

func TestSampleKeepsOrder(t *testing.T) {
	frames := makeFrames(10)
	kept, err := Sample(frames, 2)
	require.NoError(t, err)
	numbers := []int{}
	for _, f := range kept {
		numbers = append(numbers, f.Number)
	}
	require.Equal(t, []int{5, 14, 23, 32}, numbers)

	all, err := Sample(frames, 0)
	require.NoError(t, err)
	require.Equal(t, frames, all)
}

func TestSampleRejectsNegativeJump(t *testing.T) {
	_, err := Sample(makeFrames(3), -1)
	require.True(t, errors.Is(err, coco.ErrConfiguration))
}

func TestKeepIsPositional(t *testing.T) {
	// Same decisions no matter what the frames contain
	a, _ := Sample(makeFrames(7), 1)
	b, _ := Sample([]source.Frame{{Number: 100}, {Number: 1}, {Number: 50}, {Number: 2}, {Number: 3}, {Number: 4}, {Number: 5}}, 1)
	require.Len(t, a, 4)
	require.Len(t, b, 4)
	require.True(t, Keep(0, 19))
	require.False(t, Keep(19, 19))
	require.True(t, Keep(20, 19))
}
