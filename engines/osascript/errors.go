package osascript

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/robbyt/go-scriptbridge/platform/scripterr"
)

// errorLine matches osascript failure reports such as
//
//	12:18: execution error: Can’t get item 5 of {1, 2}. (-1728)
//
// optionally prefixed by the script name.
var errorLine = regexp.MustCompile(`(?s)^(?:[^:\n]*:\s*)??(\d+):(\d+): ([^:\n]*error): (.*) \((-?\d+)\)\s*$`)

// scriptingAdditionWarning is printed by osascript when a third party scripting addition
// fails to load. The script itself still runs.
const scriptingAdditionWarning = "dyld returns 2 when trying to load"

// parseStderr builds the error record for a failed run from the tool's standard error.
func parseStderr(script, stderr string) *scripterr.Record {
	text := strings.TrimSpace(stripWarnings(scripterr.Unescape(stderr)))
	if text == "" {
		return scripterr.Unknown("")
	}

	m := errorLine.FindStringSubmatch(text)
	if m == nil {
		return scripterr.Unknown(text)
	}
	start, errStart := strconv.Atoi(m[1])
	end, errEnd := strconv.Atoi(m[2])
	code, errCode := strconv.Atoi(m[5])
	if errStart != nil || errEnd != nil || errCode != nil {
		return scripterr.Unknown(text)
	}

	opts := []scripterr.Option{
		scripterr.WithRange(byteOffset(script, start), byteOffset(script, end)),
	}
	if scripterr.Describe(code) == "" {
		opts = append(opts, scripterr.WithBrief(m[3]))
	}
	return scripterr.New(code, m[4], opts...)
}

// byteOffset converts an offset counted in UTF-16 code units, as the scripting host reports
// them, into a byte offset within script.
func byteOffset(script string, units int) int {
	if units <= 0 {
		return 0
	}
	n := 0
	for i, r := range script {
		if n >= units {
			return i
		}
		n += utf16.RuneLen(r)
	}
	return len(script)
}

// stripWarnings drops scripting addition load warnings, which precede the real report.
func stripWarnings(stderr string) string {
	if !strings.Contains(stderr, scriptingAdditionWarning) {
		return stderr
	}
	lines := strings.Split(stderr, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.Contains(line, scriptingAdditionWarning) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
