package main

import logger "github.com/opencoff/go-logger"

// difflogAdapter makes a logger.Logger satisfy logsvc.Logf and
// server.Logf, both of which name their methods Infof/Warnf/Debugf
// rather than go-logger's Info/Warn/Debug.
type difflogAdapter struct {
	l logger.Logger
}

func (d difflogAdapter) Infof(format string, args ...interface{})  { d.l.Info(format, args...) }
func (d difflogAdapter) Warnf(format string, args ...interface{})  { d.l.Warn(format, args...) }
func (d difflogAdapter) Debugf(format string, args ...interface{}) { d.l.Debug(format, args...) }
