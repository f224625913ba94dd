package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/glint-editor/glint/internal/text"
)

func TestDrawTextLineTrimsWithIndicator(t *testing.T) {
	fb := New(5, 1)
	DrawTextLine(fb, "abcdefgh", text.Position{X: 0, Y: 0}, 5, text.Style{}, DefaultIcons, false, false)
	var got []rune
	for x := 0; x < 5; x++ {
		got = append(got, fb.At(x, 0).Ch)
	}
	want := "abcd" + string(DefaultIcons.TrimIndicator)
	if string(got) != want {
		t.Errorf("got %q want %q", string(got), want)
	}
}

func TestDrawTextLineTailShowsEnd(t *testing.T) {
	fb := New(5, 1)
	DrawTextLine(fb, "abcdefgh", text.Position{X: 0, Y: 0}, 5, text.Style{}, DefaultIcons, false, true)
	var got []rune
	for x := 0; x < 5; x++ {
		got = append(got, fb.At(x, 0).Ch)
	}
	if string(got) != "defgh" {
		t.Errorf("got %q want %q", string(got), "defgh")
	}
}

func TestDrawTextLineTabsAndNewlinesBecomeSpaces(t *testing.T) {
	fb := New(10, 1)
	DrawTextLine(fb, "a\tb\nc", text.Position{X: 0, Y: 0}, 10, text.Style{}, DefaultIcons, false, false)
	if fb.At(1, 0).Ch != ' ' || fb.At(3, 0).Ch != ' ' {
		t.Error("tab/newline bytes should render as a single space")
	}
}

func TestDrawRectangleFillClipsToBuffer(t *testing.T) {
	fb := New(3, 3)
	DrawRectangleFill(fb, text.Position{X: 1, Y: 1}, text.Area{Width: 10, Height: 10}, text.Style{})
	// should not panic, and should have filled only in-bounds cells
	if fb.At(1, 1).Ch != ' ' {
		t.Error("expected fill to touch (1,1)")
	}
}

func TestPresentOnlyEmitsChangedCells(t *testing.T) {
	back := New(3, 1)
	front := New(3, 1)
	back.Set(1, 0, text.Cell{Ch: 'x', FG: text.RGB24{R: 1}, BG: text.RGB24{}})

	var buf bytes.Buffer
	if err := Present(&buf, back, front, 0, 0, false, ColorTruecolor); err != nil {
		t.Fatalf("Present: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "x") {
		t.Errorf("expected changed cell 'x' in output, got %q", out)
	}
	if strings.Count(out, "\x1b[") == 0 {
		t.Error("expected at least one escape sequence")
	}

	// second present with no changes should emit nothing but a flush.
	var buf2 bytes.Buffer
	if err := Present(&buf2, back, front, 0, 0, false, ColorTruecolor); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if buf2.Len() != 0 {
		t.Errorf("expected no output for unchanged buffer, got %q", buf2.String())
	}
}

func TestNearest256IsStable(t *testing.T) {
	white := nearest256(text.RGB24{R: 255, G: 255, B: 255})
	black := nearest256(text.RGB24{R: 0, G: 0, B: 0})
	if white == black {
		t.Error("white and black should not map to the same xterm256 code")
	}
}
