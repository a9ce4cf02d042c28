package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

const (
	ServiceName = "yatube"
	ProdEnv     = "prod"
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests don't go through main, so the logger has to exist as soon as the
// package is imported.
func init() {
	InitLogger()
}

func InitLogger() {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	isProd := os.Getenv("YATUBE_ENV") == ProdEnv
	if isProd {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	Log = logger.WithFields(
		logrus.Fields{"service": ServiceName, "is_development": !isProd},
	)
}

// SetLevel changes the level of the shared logger at runtime.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}
