package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/relay/internal/logging"
)

func TestNewDefaults(t *testing.T) {
	logger, err := logging.New(logging.NewDefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewConsoleFormat(t *testing.T) {
	logger, err := logging.New(logging.Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1), "debug level is enabled")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := logging.New(logging.Config{Level: "chatty", Format: "json"})
	require.Error(t, err)
}
