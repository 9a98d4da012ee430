// Copyright 2024 The Cockroach Authors
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

package perfhash

import "github.com/sirupsen/logrus"

// Logger receives diagnostic messages from construction: a Debugf per
// lambda-halving retry, and an Infof once construction succeeds with the
// final bucket/lambda statistics. The default is a no-op; install a real
// logger with WithLogger.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}

// logrusLogger adapts a *logrus.Logger (or *logrus.Entry) to Logger.
type logrusLogger struct {
	debug func(format string, args ...any)
	info  func(format string, args ...any)
}

// NewLogrusLogger adapts l to Logger, for use with WithLogger.
func NewLogrusLogger(l *logrus.Logger) Logger {
	return logrusLogger{debug: l.Debugf, info: l.Infof}
}

// NewLogrusEntryLogger adapts a pre-configured *logrus.Entry (e.g. one
// carrying fields set up by the caller) to Logger.
func NewLogrusEntryLogger(e *logrus.Entry) Logger {
	return logrusLogger{debug: e.Debugf, info: e.Infof}
}

func (l logrusLogger) Debugf(format string, args ...any) { l.debug(format, args...) }
func (l logrusLogger) Infof(format string, args ...any)  { l.info(format, args...) }
