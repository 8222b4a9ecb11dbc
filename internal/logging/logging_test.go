package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.WithField("event_id", "e1").Info("event scheduled")
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "event scheduled", entry["msg"])
	assert.Equal(t, "e1", entry["event_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, nil)
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Level: "info", Format: "xml"}, nil)
	assert.Error(t, err)
}
