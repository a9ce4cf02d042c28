package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	t.Setenv("YATUBE_ENV", ProdEnv)
	t.Setenv("LOG_LEVEL", "debug")
	InitLogger()
	defer func() {
		t.Setenv("YATUBE_ENV", "")
		t.Setenv("LOG_LEVEL", "")
		InitLogger()
	}()

	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Equal(t, ServiceName, Log.Data["service"])
	assert.Equal(t, false, Log.Data["is_development"])

	SetLevel(logrus.ErrorLevel)
	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())
}

func TestInitLoggerDefaults(t *testing.T) {
	t.Setenv("YATUBE_ENV", "")
	t.Setenv("LOG_LEVEL", "nonsense")
	InitLogger()

	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Equal(t, true, Log.Data["is_development"])
}
