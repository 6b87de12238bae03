package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEmit_RecoversFromPanickingSink(t *testing.T) {
	sink := SinkFunc(func(string, map[string]interface{}) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		Emit(sink, "CONNECT", map[string]interface{}{"endpoint": "ws://x"})
	})
}

func TestEmit_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(nil, "CONNECT", nil)
	})
}

func TestZapSink_Record(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	Emit(sink, "SET LOCAL DESCRIPTION", map[string]interface{}{"type": "offer", "bytes": 12})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "SET LOCAL DESCRIPTION", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "offer", ctx["type"])
		assert.EqualValues(t, 12, ctx["bytes"])
	}
}

func TestLogrusSink_Record(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	Emit(NewLogrusSink(l), "WEBSOCKET ON OPEN", map[string]interface{}{"conn_id": "abc"})

	assert.Contains(t, buf.String(), `"msg":"WEBSOCKET ON OPEN"`)
	assert.Contains(t, buf.String(), `"conn_id":"abc"`)
}
