package common

import (
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for input, expected := range testCases {
		lvl, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, lvl, input)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestSetLogFormat(t *testing.T) {
	assert.NoError(t, SetLogFormat("json"))
	assert.NoError(t, SetLogFormat("text"))
	assert.Error(t, SetLogFormat("xml"))
}
