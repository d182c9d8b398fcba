package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewZapLoggerFallsBackOnBadLevel(t *testing.T) {
	l := NewZapLogger(&ZapLoggerConfig{Encoding: "console", Level: "nope", DisableStacktrace: true})
	assert.NotNil(t, l)
	child := l.With(zap.String("component", "test"))
	assert.NotNil(t, child)
	child.Info("ok")
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("ignored", zap.Int64("product_id", 1))
	assert.NotNil(t, l.With())
}
