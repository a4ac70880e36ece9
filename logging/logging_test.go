package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestConsoleAppenderFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("viz")
	logger.AddAppender(NewWriterAppender(&buf))

	logger.Infow("frustum rebuilt", "near", 0.1, "far", 10)

	parts := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	test.That(t, parts, test.ShouldHaveLength, 6)
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "viz")
	test.That(t, parts[3], test.ShouldStartWith, "logging/logging_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "frustum rebuilt")
	test.That(t, parts[5], test.ShouldEqual, `{"near":0.1,"far":10}`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("viz")
	logger.AddAppender(NewWriterAppender(&buf))
	logger.SetLevel(WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warnf("kept %d", 1)
	test.That(t, buf.String(), test.ShouldContainSubstring, "kept 1")
}

func TestSublogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("viz")
	logger.AddAppender(NewWriterAppender(&buf))

	sub := logger.Sublogger("frustum")
	test.That(t, sub.GetLevel(), test.ShouldEqual, DEBUG)
	sub.Error("boom")
	test.That(t, buf.String(), test.ShouldContainSubstring, "viz.frustum")

	// changing the sublogger level does not affect the parent.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("skipped point", "index", 3)
	logger.Info("done")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("skipped point").Len(), test.ShouldEqual, 1)
	entry := logs.FilterMessage("skipped point").All()[0]
	test.That(t, entry.ContextMap()["index"], test.ShouldEqual, int64(3))
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnw("odd", "lonely")
	test.That(t, logs.FilterMessage("odd").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterFieldKey("ignored").Len(), test.ShouldEqual, 1)
}

func TestSubloggerSharesAppenders(t *testing.T) {
	var root, late bytes.Buffer
	logger := NewBlankLogger("viz")
	logger.AddAppender(NewWriterAppender(&root))
	sub := logger.Sublogger("playback")

	// an appender added after the sublogger exists still sees its entries.
	logger.AddAppender(NewWriterAppender(&late))
	sub.Infow("tick", "shown", 4)
	test.That(t, root.String(), test.ShouldContainSubstring, "viz.playback")
	test.That(t, late.String(), test.ShouldContainSubstring, `{"shown":4}`)

	parts := strings.Split(late.String(), "\t")
	test.That(t, parts[0], test.ShouldEndWith, "Z")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, sub.AsZap(), test.ShouldNotBeNil)
}

func TestLevelFromString(t *testing.T) {
	for input, expected := range map[string]Level{
		"debug":   DEBUG,
		"INFO":    INFO,
		"Warning": WARN,
		"error":   ERROR,
	} {
		level, err := LevelFromString(input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, level.UnmarshalJSON([]byte(`"warn"`)), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	out, err := ERROR.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"Error"`)
}
