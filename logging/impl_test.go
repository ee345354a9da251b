package logging

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	// Logger name.
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])

	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	err = json.Unmarshal([]byte(expectedParts[5]), &expectedMap)
	test.That(t, err, test.ShouldBeNil)

	actualMap := make(map[string]any)
	err = json.Unmarshal([]byte(actualParts[5]), &actualMap)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("impl", INFO, true, NewWriterAppender(notStdout))

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:67	impl Info log`)

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:71	impl infof log`)

	logger.Infow("impl logw", "key", "value", "inliers", 12)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:75	impl logw	{"key":"value","inliers":12}`)

	// Debug is below the configured level.
	logger.Debug("not logged")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.SetLevel(DEBUG)
	logger.Debugw("debug logw", "unpaired")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	DEBUG	impl	logging/impl_test.go:84	debug logw	{"unpaired":"unpaired log key"}`)
}

func TestSublogger(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("stitch", WARN, true, NewWriterAppender(notStdout))
	sub := logger.Sublogger("ransac")
	test.That(t, sub.GetLevel(), test.ShouldEqual, WARN)

	sub.Warn("sub warning")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	WARN	stitch.ransac	logging/impl_test.go:96	sub warning`)

	sub.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)
}

func TestObservedTestLogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Debugw("iteration", "inliers", 3)
	logger.Errorf("bad %d", 1)
	test.That(t, observed.Len(), test.ShouldEqual, 2)
	test.That(t, observed.FilterMessage("bad 1").Len(), test.ShouldEqual, 1)
	test.That(t, observed.All()[0].ContextMap()["inliers"], test.ShouldEqual, int64(3))
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

type failingAppender struct{}

func (failingAppender) Write(zapcore.Entry, []zapcore.Field) error { return nil }

func (failingAppender) Sync() error { return errors.New("sync failed") }

func TestSyncCombinesErrors(t *testing.T) {
	logger := NewBlankLogger("sync")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	logger.AddAppender(failingAppender{})
	logger.AddAppender(failingAppender{})
	err := logger.Sync()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 2)
}

func TestToFields(t *testing.T) {
	test.That(t, toFields(nil), test.ShouldBeNil)
	fields := toFields([]interface{}{"matches", 4, 7, "seven", "dangling"})
	test.That(t, len(fields), test.ShouldEqual, 3)
	test.That(t, fields[0].Key, test.ShouldEqual, "matches")
	test.That(t, fields[1].Key, test.ShouldEqual, "7")
	test.That(t, fields[2].Key, test.ShouldEqual, "dangling")
	test.That(t, fields[2].Type, test.ShouldEqual, zapcore.StringType)
	test.That(t, fields[2].String, test.ShouldEqual, "unpaired log key")
}

func TestUnpairedKeyOutput(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("impl", DEBUG, true, NewWriterAppender(notStdout))
	logger.Infow("dangling", "matches", 3, "inliers")
	line := notStdout.String()
	test.That(t, line, test.ShouldContainSubstring, `{"matches":3,"inliers":"unpaired log key"}`)
	test.That(t, line, test.ShouldNotContainSubstring, "Verbose")
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	out, err := json.Marshal(ERROR)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"error"`)
}
