package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesTextFormattedLogsToGivenLevel(t *testing.T) {
	log := New(logrus.DebugLevel)
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
}

func TestDeduperWarnOnceLogsOnlyFirstHitPerKey(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.WarnLevel)
	entry := log.WithField("test", true)

	d := NewDeduper()
	d.WarnOnce(entry, "site-a", "first problem")
	d.WarnOnce(entry, "site-a", "first problem again")
	d.WarnOnce(entry, "site-a", "first problem a third time")

	lines := countLines(buf.String())
	assert.Equal(t, 1, lines, "a repeated key must log at most once")
}

func TestDeduperWarnOnceTracksKeysIndependently(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.WarnLevel)
	entry := log.WithField("test", true)

	d := NewDeduper()
	d.WarnOnce(entry, "site-a", "problem a")
	d.WarnOnce(entry, "site-b", "problem b")

	assert.Equal(t, 2, countLines(buf.String()), "distinct keys must each log independently")
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return bytes.Count([]byte(s), []byte("\n"))
}
