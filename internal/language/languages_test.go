package language

import "testing"

func TestDescribeKnownCodes(t *testing.T) {
	t.Parallel()

	if got := Describe("ja"); got != "Japanese" {
		t.Fatalf("unexpected label for ja: %q", got)
	}
	if got := Describe(" ZH_CN "); got != "Chinese (Simplified)" {
		t.Fatalf("expected normalization before lookup, got %q", got)
	}
}

func TestDescribeUnknownCodeReturnsRawInput(t *testing.T) {
	t.Parallel()

	if got := Describe("xx-unknown"); got != "xx-unknown" {
		t.Fatalf("unknown code must come back unchanged, got %q", got)
	}
	if got := Describe(""); got != "" {
		t.Fatalf("blank code must come back unchanged, got %q", got)
	}
}

func TestIsSupported(t *testing.T) {
	t.Parallel()

	if !IsSupported("en") {
		t.Fatalf("expected en to be supported")
	}
	if !IsSupported("ZH-TW") {
		t.Fatalf("expected zh-tw to be supported after normalization")
	}
	if IsSupported("tlh") {
		t.Fatalf("did not expect tlh to be supported")
	}
	if IsSupported("") {
		t.Fatalf("did not expect blank code to be supported")
	}
}

func TestOptionsSortedAndLabeled(t *testing.T) {
	t.Parallel()

	options := Options()
	if len(options) != len(SupportedCodes()) {
		t.Fatalf("expected one option per supported code, got %d", len(options))
	}
	for i := 1; i < len(options); i++ {
		if options[i-1].Code >= options[i].Code {
			t.Fatalf("options are not sorted by code: %q before %q", options[i-1].Code, options[i].Code)
		}
	}
	for _, option := range options {
		if option.Label == "" {
			t.Fatalf("option %q is missing a label", option.Code)
		}
	}
}
