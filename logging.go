// logging.go
//
// This source file is part of the FoundationDB open source project
//
// Copyright 2026 Apple Inc. and the FoundationDB project authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//


package main

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// logFileMaxSizeMB is the size at which the log file gets rotated.
	logFileMaxSizeMB = 100
	// logFileMaxBackups is the number of rotated log files that are kept.
	logFileMaxBackups = 5
	// logFileMaxAgeDays is the number of days rotated log files are kept.
	logFileMaxAgeDays = 28
)

// setupLogger creates the session logger. Logs always go to stderr, if
// logPath is set they are also written to a rotated file. The returned
// function flushes and closes the sinks.
func setupLogger(logPath string) (logr.Logger, func(), error) {
	zapConfig := zap.NewProductionConfig()
	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Discard(), nil, err
	}

	var fileWriter *lumberjack.Logger
	if logPath != "" {
		fileWriter = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		}
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zapConfig.EncoderConfig), zapcore.AddSync(fileWriter), zapConfig.Level)
		zapLogger = zapLogger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	closer := func() {
		_ = zapLogger.Sync()
		if fileWriter != nil {
			_ = fileWriter.Close()
		}
	}

	return zapr.NewLogger(zapLogger), closer, nil
}
