package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// FingerprintPrefix tags fingerprints with the hash algorithm so legacy
// entries stay distinguishable if the algorithm ever changes.
const FingerprintPrefix = "sha256:"

var FingerprintPattern = regexp.MustCompile(`^sha256:[0-9a-f]{64}$`)

var spaceRuns = regexp.MustCompile(` +`)

// Fingerprint hashes the normalized form of raw source. It is total: any
// byte sequence fingerprints, malformed input is hashed as opaque text.
func Fingerprint(source string) string {
	sum := sha256.Sum256([]byte(NormalizeSource(source)))
	return FingerprintPrefix + hex.EncodeToString(sum[:])
}

// ScopedFingerprint hashes normalized source within the entity's scope
// domain. A file holding a single function normalizes to the same bytes
// as the function itself; without the scope prefix the module and the
// function would collapse into one record and alias each other's
// description.
func ScopedFingerprint(scope Scope, source string) string {
	sum := sha256.Sum256([]byte(string(scope) + "\x00" + NormalizeSource(source)))
	return FingerprintPrefix + hex.EncodeToString(sum[:])
}

// NormalizeSource strips comments, collapses whitespace runs, and unifies
// string quoting so formatting-only edits do not change the fingerprint.
// Token order and literal values are preserved. The same semantic content
// always yields the same bytes regardless of line endings, indentation
// width, or a trailing newline.
func NormalizeSource(source string) string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	source = strings.ReplaceAll(source, "\t", " ")

	var cleaned []string
	for _, line := range strings.Split(source, "\n") {
		line = stripLineComment(line)
		line = strings.TrimRight(line, " ")
		if line != "" || (len(cleaned) > 0 && cleaned[len(cleaned)-1] != "") {
			cleaned = append(cleaned, line)
		}
	}

	result := strings.Join(cleaned, "\n")
	result = spaceRuns.ReplaceAllString(result, " ")
	return strings.TrimRight(result, " \n")
}

// stripLineComment removes a trailing # or // comment, tracking string
// literals so markers inside strings survive. Single-quoted literals are
// rewritten with double quotes to absorb quoting variance.
func stripLineComment(line string) string {
	var out strings.Builder
	inString := false
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]

		if c == '"' || c == '\'' {
			escaped := i > 0 && line[i-1] == '\\'
			if !escaped {
				switch {
				case !inString:
					inString = true
					quote = c
					out.WriteByte('"')
					continue
				case c == quote:
					inString = false
					out.WriteByte('"')
					continue
				}
			}
		}

		if !inString {
			if c == '#' {
				return out.String()
			}
			if c == '/' && i+1 < len(line) && line[i+1] == '/' {
				return out.String()
			}
		}

		out.WriteByte(c)
	}
	return out.String()
}
