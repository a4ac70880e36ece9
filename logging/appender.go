package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender writes tab separated log lines to an io.Writer.
type ConsoleAppender struct {
	mu sync.Mutex
	io.Writer
}

// NewStdoutAppender creates a new appender that outputs to stdout.
func NewStdoutAppender() *ConsoleAppender {
	return &ConsoleAppender{Writer: os.Stdout}
}

// NewWriterAppender creates a new appender that outputs to the input writer.
func NewWriterAppender(writer io.Writer) *ConsoleAppender {
	return &ConsoleAppender{Writer: writer}
}

// Write outputs the log entry to the underlying stream.
func (appender *ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	if err != nil {
		return err
	}
	appender.mu.Lock()
	defer appender.mu.Unlock()
	_, err = io.WriteString(appender.Writer, line)
	return err
}

// formatEntry renders an entry as one tab separated line: time, level, name, caller, message and
// the fields as a json object. Empty name and caller columns are left out. On a field encoding
// error the line holds everything but the fields.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	columns := make([]string, 0, 6)
	columns = append(columns, entry.Time.Format(DefaultTimeFormatStr), strings.ToUpper(entry.Level.String()))
	if entry.LoggerName != "" {
		columns = append(columns, entry.LoggerName)
	}
	if entry.Caller.Defined {
		columns = append(columns, callerToString(&entry.Caller))
	}
	columns = append(columns, entry.Message)

	var err error
	if len(fields) > 0 {
		var encoded string
		if encoded, err = encodeFields(fields); err == nil {
			columns = append(columns, encoded)
		}
	}
	return strings.Join(columns, "\t") + "\n", err
}

// Sync is a no-op.
func (appender *ConsoleAppender) Sync() error {
	return nil
}

// encodeFields uses zap's json encoder which will encode our slice of fields in-order. As opposed
// to the random iteration order of a map. Call it with an empty Entry object such that only the
// fields become "map-ified".
func encodeFields(fields []zapcore.Field) (string, error) {
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return "", err
	}
	defer buf.Free()
	return buf.String(), nil
}

// callerToString keeps the package directory and file of the caller, e.g. "logging/logging_test.go:36".
func callerToString(caller *zapcore.EntryCaller) string {
	file := caller.File
	if dir := strings.LastIndexByte(file, '/'); dir >= 0 {
		if pkg := strings.LastIndexByte(file[:dir], '/'); pkg >= 0 {
			file = file[pkg+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, caller.Line)
}
