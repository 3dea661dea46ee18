package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithImportRunAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := GetLogger()
	SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { SetLogger(prev) })

	WithImportRun("run-1", "/data/allcountries.sqlite3").Infow("Import finished", "locations", 3)

	entries := logs.FilterMessage("Import finished").All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "run-1", ctx["run_id"])
		assert.Equal(t, "/data/allcountries.sqlite3", ctx["source"])
		assert.Equal(t, int64(3), ctx["locations"])
	}
}

func TestInitBuildsLogger(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetLogger(prev) })

	assert.NoError(t, Init("production"))
	assert.NotNil(t, GetLogger())
}
