// Copyright © 2016 Abcum Ltd
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

// Package log provides the engine's structured logger: a thin,
// package-level wrapper over logrus, following the shape of the
// teacher's own log package (one shared *logrus.Logger, level-gated
// helpers) without the Stackdriver/syslog hook plumbing that package
// carries for its server deployment.
package log

import (
	"github.com/sirupsen/logrus"
)

// Instance is the package-level logger every component logs through.
var Instance = logrus.New()

// WithFields starts a structured log entry.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Instance.WithFields(fields)
}

// Debug logs a debug-level message, used by engine.Run to trace the
// start of compilation and of evaluation.
func Debug(args ...interface{}) {
	Instance.Debug(args...)
}

// Warn logs a warning, used by engine.Run for compile and evaluation
// failures and by the engine when the plan cache cannot be created.
func Warn(args ...interface{}) {
	Instance.Warn(args...)
}

// SetLevel adjusts the minimum level logged, mirroring the teacher's
// configurable log verbosity.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Instance.SetLevel(lvl)
	return nil
}
