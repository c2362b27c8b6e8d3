package util

import (
	"sync"
)

var (
	globalLogger *Logger
	loggerMu     sync.RWMutex
)

// SetLogger installs the global logger instance.
func SetLogger(logger *Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = logger
}

// CloseLogger closes the global logger's outputs, if one is installed.
func CloseLogger() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if globalLogger != nil {
		globalLogger.Close()
	}
}

func getLogger() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// LogInfo convenience functions for logging
func LogInfo(msg string) {
	if l := getLogger(); l != nil {
		l.Info(msg)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := getLogger(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string) {
	if l := getLogger(); l != nil {
		l.Debug(msg)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := getLogger(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string) {
	if l := getLogger(); l != nil {
		l.Warn(msg)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := getLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string) {
	if l := getLogger(); l != nil {
		l.Error(msg)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := getLogger(); l != nil {
		l.Errorf(format, args...)
	}
}
