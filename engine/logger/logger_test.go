package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)
	defer SetLevel(Info)

	log := New("logger_test")

	SetLevel(Warning)
	log.Infof("hidden %d", 1)
	log.Warningf("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "[logger_test]")

	buf.Reset()
	SetLevel(Debug)
	log.Debugf("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestSetSink_KeepsLevel(t *testing.T) {
	var first, second bytes.Buffer
	SetSink(&first)
	defer SetSink(os.Stderr)
	defer SetLevel(Info)

	SetLevel(Error)
	SetSink(&second)

	New("logger_test").Warning("dropped")
	assert.Empty(t, second.String())
}
