package main

import (
	"io"
	"strings"
	"time"

	"github.com/lthibault/log"
	"github.com/sirupsen/logrus"
)

func logger(loglvl, logfmt string, w io.Writer) log.Logger {
	return log.New(
		withLevel(loglvl, logfmt),
		log.WithFormatter(formatter(logfmt)),
		log.WithWriter(w))
}

// withLevel accepts a level name or its first letter, unknown names fall back to info.
// The "none" format only lets fatal errors through.
func withLevel(loglvl, logfmt string) log.Option {
	level := log.InfoLevel
	if logfmt == "none" {
		return log.WithLevel(log.FatalLevel)
	}

	switch l := strings.ToLower(loglvl); {
	case l == "":
	case strings.HasPrefix("trace", l):
		level = log.TraceLevel
	case strings.HasPrefix("debug", l):
		level = log.DebugLevel
	case strings.HasPrefix("warning", l):
		level = log.WarnLevel
	case strings.HasPrefix("error", l):
		level = log.ErrorLevel
	case strings.HasPrefix("fatal", l):
		level = log.FatalLevel
	}
	return log.WithLevel(level)
}

func formatter(logfmt string) logrus.Formatter {
	switch logfmt {
	case "json":
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	case "none":
		return nil
	default:
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
	}
}
