package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/perun-network/icp-adjudicator-go/adjudicator"
	"github.com/perun-network/icp-adjudicator-go/apiserver"
	"github.com/perun-network/icp-adjudicator-go/holdings"
	"github.com/perun-network/icp-adjudicator-go/receiver"
	"github.com/perun-network/icp-adjudicator-go/registry"
)

// logWriter writes every log line to stdout and to the rotator pipe,
// the same dual-output shape the teacher's daemon log writer uses.
type logWriter struct {
	rotatorPipe io.Writer
}

func (w *logWriter) Write(b []byte) (int, error) {
	os.Stdout.Write(b)
	if w.rotatorPipe != nil {
		w.rotatorPipe.Write(b)
	}
	return len(b), nil
}

var (
	logOut     = &logWriter{}
	backendLog = btclog.NewBackend(logOut)
	logRotator *rotator.Rotator

	adjLog = backendLog.Logger("ADJD")
	apiLog = backendLog.Logger("APIS")
	hldLog = backendLog.Logger("HOLD")
	regLog = backendLog.Logger("REGY")
	rcvLog = backendLog.Logger("RECV")

	subsystemLoggers = map[string]btclog.Logger{
		"ADJD": adjLog,
		"APIS": apiLog,
		"HOLD": hldLog,
		"REGY": regLog,
		"RECV": rcvLog,
	}
)

func init() {
	adjudicator.UseLogger(adjLog)
	apiserver.UseLogger(apiLog)
	holdings.UseLogger(hldLog)
	registry.UseLogger(regLog)
	receiver.UseLogger(rcvLog)
}

// initLogRotator sets up log-file rotation at logFile, matching
// lnd.go's logging setup (btclog backend, jrick/logrotate rotator
// fed through an io.Pipe).
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	logOut.rotatorPipe = pw
	logRotator = r
	return nil
}

// setLogLevels sets every subsystem logger to level, dynamically
// ignoring unrecognized levels by falling back to info.
func setLogLevels(levelStr string) {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		level = btclog.LevelInfo
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
