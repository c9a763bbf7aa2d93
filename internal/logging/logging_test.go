package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCarriesRunID(t *testing.T) {
	var b bytes.Buffer
	log, err := New(Config{Level: "debug", Format: FormatJSON, Out: &b})
	require.NoError(t, err)
	log.WithField("batch", 3).Debug("batch done")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &rec))
	assert.Equal(t, "batch done", rec["msg"])
	assert.Equal(t, "debug", rec["level"])
	assert.EqualValues(t, 3, rec["batch"])
	_, err = uuid.Parse(rec["run_id"].(string))
	assert.NoError(t, err)
}

func TestLevelFilters(t *testing.T) {
	var b bytes.Buffer
	log, err := New(Config{Level: "warn", Out: &b})
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, b.String(), "hidden")
	assert.Contains(t, b.String(), "shown")
	assert.Contains(t, b.String(), "run_id=")
}

func TestRunIDsDiffer(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)
	b, err := New(Config{})
	require.NoError(t, err)
	assert.NotEqual(t, a.Data["run_id"], b.Data["run_id"])
}

func TestBadConfig(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}
