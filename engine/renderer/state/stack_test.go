package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transition struct{ prev, next int }

func newRecordingStack(sentinel int) (*Stack[int], *[]transition) {
	var log []transition
	s := NewComparableStack("test", sentinel, func(prev, next int) {
		log = append(log, transition{prev, next})
	})
	return s, &log
}

func TestStackPushPopTracksMostRecentValue(t *testing.T) {
	s, _ := newRecordingStack(0)

	ops := []struct {
		push bool
		v    int
		want int
	}{
		{push: true, v: 1, want: 1},
		{push: true, v: 2, want: 2},
		{push: false, want: 1},
		{push: true, v: 3, want: 3},
		{push: true, v: 3, want: 3},
		{push: false, want: 3},
		{push: false, want: 1},
		{push: false, want: 0},
	}
	for i, op := range ops {
		if op.push {
			s.Push(op.v)
		} else {
			_, err := s.Pop()
			require.NoError(t, err, "op %d", i)
		}
		assert.Equal(t, op.want, s.Peek(), "op %d", i)
	}
	assert.Equal(t, 1, s.Len())
}

func TestStackPopSentinelFails(t *testing.T) {
	s, log := newRecordingStack(7)

	_, err := s.Pop()

	var usage *UsageError
	require.True(t, errors.As(err, &usage))
	assert.Contains(t, usage.Error(), "underflow")
	assert.Equal(t, 7, s.Peek())
	assert.Empty(t, *log)

	s.Push(1)
	_, err = s.Pop()
	require.NoError(t, err)
	_, err = s.Pop()
	assert.Error(t, err)
}

func TestStackAppliesOnlyRealTransitions(t *testing.T) {
	s, log := newRecordingStack(0)

	s.Push(0)
	s.Push(5)
	s.Push(5)
	_, _ = s.Pop()
	_, _ = s.Pop()
	_, _ = s.Pop()

	assert.Equal(t, []transition{{0, 5}, {5, 0}}, *log)
	applied, skipped := s.Stats()
	assert.Equal(t, 2, applied)
	assert.Equal(t, 4, skipped)
}

func TestStackSetReplacesTop(t *testing.T) {
	s, log := newRecordingStack(0)

	s.Set(4)
	s.Set(4)
	s.Push(9)
	s.Set(4)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 4, s.Peek())
	assert.Equal(t, []transition{{0, 4}, {4, 9}, {9, 4}}, *log)

	_, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 4, s.Peek())
	assert.Len(t, *log, 3, "popping onto an equal value must not re-apply")
}

func TestStackInvalidateForcesNextTransition(t *testing.T) {
	s, log := newRecordingStack(0)

	s.Set(3)
	s.Invalidate()
	s.Set(3)
	s.Set(3)

	assert.Equal(t, []transition{{0, 3}, {3, 3}}, *log)
}

func TestStackCustomEquality(t *testing.T) {
	calls := 0
	s := NewStack("slice", []int{1, 2}, func(a, b []int) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}, func(_, _ []int) { calls++ })

	s.Set([]int{1, 2})
	s.Set([]int{1, 2, 3})
	s.Set([]int{1, 2, 3})

	assert.Equal(t, 1, calls)
}
