package logging

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkEmitAndQuery(t *testing.T) {
	sink := NewSink(10)

	sink.Emit(zerolog.InfoLevel, "agent", "first")
	sink.Emit(zerolog.WarnLevel, "agent", "second")
	sink.Emit(zerolog.DebugLevel, "tools", "third")

	all := sink.Query(zerolog.DebugLevel)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[1].Message)
	assert.Equal(t, "third", all[2].Message)
}

func TestSinkMinLevelFilter(t *testing.T) {
	sink := NewSink(10)

	sink.Emit(zerolog.DebugLevel, "a", "debug msg")
	sink.Emit(zerolog.InfoLevel, "a", "info msg")
	sink.Emit(zerolog.WarnLevel, "a", "warn msg")
	sink.Emit(zerolog.ErrorLevel, "a", "error msg")

	warnUp := sink.Query(zerolog.WarnLevel)
	require.Len(t, warnUp, 2)
	assert.Equal(t, "warn msg", warnUp[0].Message)
	assert.Equal(t, "error msg", warnUp[1].Message)
}

func TestSinkCapacityEviction(t *testing.T) {
	const capacity = 5
	sink := NewSink(capacity)

	// capacity+k appends keep exactly the most recent capacity records.
	for i := 0; i < capacity+3; i++ {
		sink.Emit(zerolog.InfoLevel, "loop", fmt.Sprintf("msg-%d", i))
	}

	assert.Equal(t, capacity, sink.Len())

	records := sink.Query(zerolog.DebugLevel)
	require.Len(t, records, capacity)
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("msg-%d", i+3), r.Message, "insertion order preserved after eviction")
	}
}

func TestSinkNeverExceedsCapacity(t *testing.T) {
	sink := NewSink(8)
	for i := 0; i < 1000; i++ {
		sink.Emit(zerolog.InfoLevel, "x", "m")
		assert.LessOrEqual(t, sink.Len(), 8)
	}
}

func TestSinkClear(t *testing.T) {
	sink := NewSink(4)
	sink.Emit(zerolog.InfoLevel, "a", "one")
	sink.Emit(zerolog.InfoLevel, "a", "two")
	require.Equal(t, 2, sink.Len())

	sink.Clear()
	assert.Zero(t, sink.Len())
	assert.Empty(t, sink.Query(zerolog.DebugLevel))

	sink.Emit(zerolog.InfoLevel, "a", "after clear")
	assert.Equal(t, 1, sink.Len())
}

func TestSinkFormat(t *testing.T) {
	sink := NewSink(4)
	sink.Emit(zerolog.WarnLevel, "scholar", "rate limit hit")

	out := sink.Format(zerolog.DebugLevel)
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "scholar")
	assert.Contains(t, out, "rate limit hit")
	assert.Contains(t, out, "|")
}

func TestSinkAsZerologWriter(t *testing.T) {
	sink := NewSink(16)
	log := NewWithSink(nil, sink, "debug", "silent")

	log.Sub("agent").Info().Msg("tool dispatched")
	log.Sub("gateway").Warn().Msg("auth failed")

	records := sink.Query(zerolog.DebugLevel)
	require.Len(t, records, 2)
	assert.Equal(t, "agent", records[0].Component)
	assert.Equal(t, "tool dispatched", records[0].Message)
	assert.Equal(t, zerolog.WarnLevel, records[1].Level)
}

func TestSinkConcurrentAppend(t *testing.T) {
	sink := NewSink(100)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sink.Emit(zerolog.InfoLevel, "worker", fmt.Sprintf("g%d-%d", id, i))
			}
		}(g)
	}
	wg.Wait()

	// 400 appends into capacity 100: exactly capacity survive.
	assert.Equal(t, 100, sink.Len())
	assert.Len(t, sink.Query(zerolog.DebugLevel), 100)
}
