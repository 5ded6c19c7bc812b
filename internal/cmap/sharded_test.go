package cmap

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNormalizesShardCount(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := New[string, int](tt.input)
			require.Len(t, m.shards, tt.want)
		})
	}
}

func TestAcquireAndPin_CreatesOnceAndPinsBothPaths(t *testing.T) {
	m := New[string, *int](DefaultShardCount)

	var pins int
	pin := func(*int) { pins++ }
	create := func() *int { v := 42; return &v }

	v1, inserted1 := m.AcquireAndPin("k", create, pin)
	require.True(t, inserted1, "first acquire should create the slot")
	require.Equal(t, 42, *v1)
	require.Equal(t, 1, pins)

	v2, inserted2 := m.AcquireAndPin("k", create, pin)
	require.False(t, inserted2, "second acquire should find the existing slot")
	require.Same(t, v1, v2, "second acquire must return the same value, not a new one")
	require.Equal(t, 2, pins, "pin runs on every acquire, insert or not")
}

func TestFindAndPin_MissingKey(t *testing.T) {
	m := New[string, int](DefaultShardCount)

	called := false
	_, ok := m.FindAndPin("missing", func(int) { called = true })
	require.False(t, ok)
	require.False(t, called, "pin must not run on a miss")
}

func TestEraseIf_OnlyErasesWhenConditionHolds(t *testing.T) {
	m := New[string, int](DefaultShardCount)
	m.Set("k", 1)

	require.False(t, m.EraseIf("k", func(v int) bool { return v != 1 }))
	_, ok := m.FindAndPin("k", func(int) {})
	require.True(t, ok, "slot must survive a failed condition")

	require.True(t, m.EraseIf("k", func(v int) bool { return v == 1 }))
	_, ok = m.FindAndPin("k", func(int) {})
	require.False(t, ok, "slot must be gone once the condition holds")

	require.False(t, m.EraseIf("k", func(int) bool { return true }), "erasing an absent key is a no-op")
}

func TestRangeAndLen(t *testing.T) {
	m := New[string, int](DefaultShardCount)
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}
	require.Equal(t, 50, m.Len())

	seen := map[string]int{}
	m.Range(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	require.Len(t, seen, 50)

	count := 0
	m.Range(func(string, int) bool {
		count++
		return count < 5
	})
	require.Equal(t, 5, count, "Range must stop as soon as fn returns false")
}

func TestReset(t *testing.T) {
	m := New[string, int](DefaultShardCount)
	m.Set("k", 1)
	require.Equal(t, 1, m.Len())

	m.Reset()
	require.Equal(t, 0, m.Len())
}

func TestNewStringShardedMurmur3DistributesKeys(t *testing.T) {
	m := NewStringShardedMurmur3[int](DefaultShardCount)
	for i := 0; i < 512; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}
	require.Equal(t, 512, m.Len())

	nonEmpty := 0
	for _, s := range m.shards {
		if len(s.items) > 0 {
			nonEmpty++
		}
	}
	require.Greater(t, nonEmpty, 1, "murmur3 hashing should spread keys across more than one shard")
}

func TestConcurrentAcquireAndPinIsRace_Free(t *testing.T) {
	m := New[int, *int](DefaultShardCount)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := i % 4
			m.AcquireAndPin(key,
				func() *int { v := key; return &v },
				func(*int) {})
		}(i)
	}
	wg.Wait()

	require.Equal(t, 4, m.Len())
}
