package draw

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/glint-editor/glint/internal/text"
)

// StatusSeverity tags the color a status-line message renders in,
// mirroring the four-way Info/Success/Warning/Error split the original
// Window surface exposed (distinct methods, even though none of them
// carried a real implementation).
type StatusSeverity int

const (
	StatusInfo StatusSeverity = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// StatusStyles maps each severity to the style its text renders in.
type StatusStyles struct {
	Info, Success, Warning, Error, Base text.Style
}

func (s StatusStyles) forSeverity(sev StatusSeverity) text.Style {
	switch sev {
	case StatusSuccess:
		return s.Success
	case StatusWarning:
		return s.Warning
	case StatusError:
		return s.Error
	default:
		return s.Info
	}
}

// HumanizeLineCount renders a line count the way a status bar shows
// document size, e.g. "128 lines", or "12.345 k lines" for 12345 once it
// crosses into the thousands.
func HumanizeLineCount(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d lines", n)
	}
	return fmt.Sprintf("%s lines", humanize.SI(float64(n), ""))
}

// DrawStatusLine renders the left-aligned document/diagnostic segment
// and the right-aligned message segment on row y, separated by
// whatever blank space remains — grounded on the teacher's
// renderStatusBar (internal/tui/view_status.go), generalized from a
// fixed git-branch/LLM-provider layout to an arbitrary left/right pair.
func DrawStatusLine(fb *FrameBuffer, y, width int, left, right string, leftStyle, rightStyle text.Style, base text.Style) {
	DrawRectangleFill(fb, text.Position{X: 0, Y: y}, text.Area{Width: width, Height: 1}, base)

	leftRunes := []rune(left)
	if len(leftRunes) > width {
		leftRunes = leftRunes[:width]
	}
	DrawTextLine(fb, string(leftRunes), text.Position{X: 0, Y: y}, width, leftStyle, DefaultIcons, false, false)

	rightRunes := []rune(right)
	rightW := len(rightRunes)
	if rightW > width {
		rightRunes = rightRunes[len(rightRunes)-width:]
		rightW = width
	}
	if rightW == 0 {
		return
	}
	startX := width - rightW
	if startX < len(leftRunes) {
		return // not enough room: left segment wins, matching a clipped teacher status bar under a narrow terminal
	}
	DrawTextLine(fb, string(rightRunes), text.Position{X: startX, Y: y}, rightW, rightStyle, DefaultIcons, false, false)
}
