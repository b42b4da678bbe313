package internal

import (
	"strings"
	"testing"
)

func TestFingerprintFormat(t *testing.T) {
	fp := Fingerprint("def f():\n    return 1\n")
	if !FingerprintPattern.MatchString(fp) {
		t.Errorf("fingerprint %q does not match pattern", fp)
	}
	if !strings.HasPrefix(fp, FingerprintPrefix) {
		t.Errorf("fingerprint %q missing prefix", fp)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	source := "func add(a, b int) int {\n\treturn a + b\n}\n"
	if Fingerprint(source) != Fingerprint(source) {
		t.Error("same source produced different fingerprints")
	}
}

func TestFingerprintWhitespaceInsensitive(t *testing.T) {
	base := "def f(x):\n    return x * 2\n"
	variants := []string{
		"def f(x):\r\n    return x * 2\r\n",   // CRLF
		"def f(x):\n\treturn x * 2\n",         // tabs
		"def f(x):   \n    return x * 2   \n", // trailing spaces
		"def f(x):\n    return  x  *  2\n",    // internal space runs
		"def f(x):\n    return x * 2",         // no trailing newline
		"def f(x):\n    return x * 2\n\n\n",   // extra trailing newlines
	}

	want := Fingerprint(base)
	for _, v := range variants {
		if got := Fingerprint(v); got != want {
			t.Errorf("variant %q: fingerprint %s, want %s", v, got, want)
		}
	}
}

func TestFingerprintBlankLineRuns(t *testing.T) {
	oneBlank := Fingerprint("def f(x):\n\n    return x\n")
	manyBlanks := Fingerprint("def f(x):\n\n\n\n    return x\n")
	if oneBlank != manyBlanks {
		t.Error("blank line runs should collapse to one blank line")
	}
}

func TestFingerprintIgnoresTrailingComments(t *testing.T) {
	bare := "def f(x):\n    return x\n"
	commented := "def f(x):  # note\n    return x  # identity\n"
	if Fingerprint(bare) != Fingerprint(commented) {
		t.Error("comments changed the fingerprint")
	}

	goBare := "func f(x int) int {\n\treturn x\n}\n"
	goCommented := "func f(x int) int { // note\n\treturn x // as-is\n}\n"
	if Fingerprint(goBare) != Fingerprint(goCommented) {
		t.Error("line comments changed the fingerprint")
	}
}

func TestFingerprintCommentOnlyLines(t *testing.T) {
	// A stripped comment-only line behaves like a blank line, so runs of
	// them collapse rather than accumulate.
	commented := Fingerprint("def f(x):\n    # one\n    # two\n    return x\n")
	blank := Fingerprint("def f(x):\n\n    return x\n")
	if commented != blank {
		t.Error("comment-only lines should collapse like blank lines")
	}
}

func TestFingerprintSensitiveToCode(t *testing.T) {
	a := Fingerprint("def f(x):\n    return x + 1\n")
	b := Fingerprint("def f(x):\n    return x + 2\n")
	if a == b {
		t.Error("different code produced the same fingerprint")
	}
}

func TestFingerprintQuoteStyle(t *testing.T) {
	single := Fingerprint("x = 'hello'\n")
	double := Fingerprint("x = \"hello\"\n")
	if single != double {
		t.Error("quote style changed the fingerprint")
	}
}

func TestStripLineCommentInString(t *testing.T) {
	// A # inside a string literal is content, not a comment.
	got := stripLineComment(`url = "http://example.com/#anchor"`)
	if !strings.Contains(got, "#anchor") {
		t.Errorf("hash inside string was stripped: %q", got)
	}
}

func TestScopedFingerprintSeparatesScopes(t *testing.T) {
	source := "def add(a, b):\n    return a + b\n"

	asModule := ScopedFingerprint(ScopeModule, source)
	asFunction := ScopedFingerprint(ScopeFunction, source)
	if asModule == asFunction {
		t.Error("identical source fingerprinted the same across scopes")
	}
	if !FingerprintPattern.MatchString(asModule) {
		t.Errorf("fingerprint = %q", asModule)
	}

	// Within one scope the whitespace insensitivity of Fingerprint holds.
	reformatted := ScopedFingerprint(ScopeFunction, "def add(a, b):\r\n\treturn a + b")
	if reformatted != asFunction {
		t.Error("formatting change moved the scoped fingerprint")
	}
}

func TestNormalizeSourceIdempotent(t *testing.T) {
	source := "def f(x):  # comment\r\n\n\n    return  x\t\n"
	once := NormalizeSource(source)
	twice := NormalizeSource(once)
	if once != twice {
		t.Errorf("normalization is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}
