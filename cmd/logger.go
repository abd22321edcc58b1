// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"strings"
)

// stdLogger adapts the standard logger to tdh3.Logger
type stdLogger struct {
	logger *log.Logger
}

func newStdLogger() *stdLogger {
	return &stdLogger{logger: log.Default()}
}

func (l *stdLogger) Debug(msg string, kv ...interface{}) {
	l.logger.Print("DEBUG " + msg + formatKV(kv))
}

func (l *stdLogger) Info(msg string, kv ...interface{}) {
	l.logger.Print("INFO  " + msg + formatKV(kv))
}

func (l *stdLogger) Error(msg string, kv ...interface{}) {
	l.logger.Print("ERROR " + msg + formatKV(kv))
}

// formatKV renders key-value pairs as " k=v k=v"
func formatKV(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	return b.String()
}
