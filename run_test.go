package danton

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunControllerGrammageModeProducesOneRecordPerEvent(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Mode = ModeGrammage

	logger, err := NewLogger("", 0)
	require.NoError(t, err)
	rc := NewRunController(ctx, logger)

	var records []Record
	require.NoError(t, rc.Run(5, func(r Record) { records = append(records, r) }))
	assert.Len(t, records, 5)
	for _, r := range records {
		g, ok := r.(GrammageRecord)
		require.True(t, ok)
		assert.GreaterOrEqual(t, g.Grammage, 0.0)
	}
}

func TestRunControllerForwardModeWritesThroughRecordWriter(t *testing.T) {
	ctx := newTestContext(t)
	ctx.EnergyCut = 1e5
	ctx.Sampler.Altitude = Range{1e4, 1e4}

	logger, err := NewLogger("", 0)
	require.NoError(t, err)
	rc := NewRunController(ctx, logger)

	var buf bytes.Buffer
	require.NoError(t, rc.WriteHeader(&buf))
	writer := NewRecordWriter(&buf)
	require.NoError(t, rc.Run(20, writer.Write))
	require.NoError(t, writer.Flush())
	assert.NotZero(t, buf.Len())
}

func TestRunControllerRejectsUnknownMode(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Mode = Mode(99)
	logger, err := NewLogger("", 0)
	require.NoError(t, err)
	rc := NewRunController(ctx, logger)
	assert.Error(t, rc.Run(1, func(Record) {}))
}
