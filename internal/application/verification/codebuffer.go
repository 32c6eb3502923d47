package verification

import (
	"strings"
	"sync"
)

// CodeLength is the number of digit cells in a one-time code.
const CodeLength = 6

// CodeBuffer holds the code being typed, one digit per cell, plus the focused cell.
// Cells only ever hold a single ASCII digit or nothing.
type CodeBuffer struct {
	mu    sync.Mutex
	cells [CodeLength]string
	focus int
}

func NewCodeBuffer() *CodeBuffer { return &CodeBuffer{} }

// Update sets cell index to char. An empty char clears the cell. Anything other than
// a single digit is rejected and leaves the buffer untouched. Accepting a digit moves
// focus to the next cell unless index is the last one.
func (b *CodeBuffer) Update(index int, char string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= CodeLength {
		return false
	}
	if char == "" {
		b.cells[index] = ""
		return true
	}
	if len(char) != 1 || !isDigit(char[0]) {
		return false
	}
	b.cells[index] = char
	if index < CodeLength-1 {
		b.focus = index + 1
	} else {
		b.focus = index
	}
	return true
}

// Backspace clears cell index when it holds a digit. On an already empty cell it
// moves focus back one cell, leaving that cell's digit in place.
func (b *CodeBuffer) Backspace(index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= CodeLength {
		return
	}
	if b.cells[index] != "" {
		b.cells[index] = ""
		b.focus = index
		return
	}
	if index > 0 {
		b.focus = index - 1
	}
}

// PasteFill replaces every cell when text is exactly CodeLength digits. Otherwise it is a no-op.
func (b *CodeBuffer) PasteFill(text string) bool {
	if len(text) != CodeLength {
		return false
	}
	for i := 0; i < len(text); i++ {
		if !isDigit(text[i]) {
			return false
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.cells {
		b.cells[i] = text[i : i+1]
	}
	b.focus = CodeLength - 1
	return true
}

// Complete reports whether every cell holds a digit.
func (b *CodeBuffer) Complete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.cells {
		if c == "" {
			return false
		}
	}
	return true
}

func (b *CodeBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells = [CodeLength]string{}
	b.focus = 0
}

func (b *CodeBuffer) Focus() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focus
}

func (b *CodeBuffer) Cells() [CodeLength]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cells
}

// String joins the cells; it is only a valid code when Complete is true.
func (b *CodeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.cells[:], "")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
