package tui

import "testing"

func TestGlyphs_FromEnv(t *testing.T) {
	t.Setenv("OUTLINE_TUI_GLYPHS", "")
	setGlyphs(glyphSetUnicode)
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs by default; got %v", got)
	}

	t.Setenv("OUTLINE_TUI_GLYPHS", "ascii")
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected ascii glyphs; got %v", got)
	}
	if glyphTwistyCollapsed() != ">" || glyphTwistyExpanded() != "v" {
		t.Fatalf("expected ascii twisties")
	}

	// Unknown values keep the current set.
	t.Setenv("OUTLINE_TUI_GLYPHS", "bogus")
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected unknown to be ignored; got %v", got)
	}

	setGlyphs(glyphSetUnicode)
}
