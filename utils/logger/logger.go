// Package logger prefixes every log line with the name of the object that
// produced it and forwards it to logrus.
package logger

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

const objWidth = 20

func objToString(obj any) (objStr string) {
	if obj == nil {
		objStr = "NIL"
	} else if stringerObj, ok := obj.(stringer); ok {
		objStr = stringerObj.String()
	} else if objStr, ok = obj.(string); ok {
	} else {
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

func format(obj any, msg string) string {
	return fmt.Sprintf("|%20s|%-100s", objToString(obj), msg)
}

// Init sets the level and the text formatter of the standard logrus logger.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
}

// ParseLevel parses a level name such as "debug" or "warning".
func ParseLevel(lvl string) (logrus.Level, error) {
	return logrus.ParseLevel(lvl)
}

func Trace(object any, message string) {
	if logrus.GetLevel() < logrus.TraceLevel {
		return
	}
	logrus.Trace(format(object, message))
}

func Tracef(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.TraceLevel {
		return
	}
	logrus.Trace(format(object, fmt.Sprintf(message, args...)))
}

func Debug(object any, message string) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	logrus.Debug(format(object, message))
}

func Debugf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	logrus.Debug(format(object, fmt.Sprintf(message, args...)))
}

func Info(object any, message string) {
	if logrus.GetLevel() < logrus.InfoLevel {
		return
	}
	logrus.Info(format(object, message))
}

func Infof(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.InfoLevel {
		return
	}
	logrus.Info(format(object, fmt.Sprintf(message, args...)))
}

func Warning(object any, message string) {
	if logrus.GetLevel() < logrus.WarnLevel {
		return
	}
	logrus.Warning(format(object, message))
}

func Warningf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.WarnLevel {
		return
	}
	logrus.Warning(format(object, fmt.Sprintf(message, args...)))
}

func Error(object any, message string) {
	if logrus.GetLevel() < logrus.ErrorLevel {
		return
	}
	logrus.Error(format(object, message))
}

func Errorf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.ErrorLevel {
		return
	}
	logrus.Error(format(object, fmt.Sprintf(message, args...)))
}

func Fatal(object any, message string) {
	logrus.Fatal(format(object, message))
}

func Fatalf(object any, message string, args ...any) {
	logrus.Fatal(format(object, fmt.Sprintf(message, args...)))
}
