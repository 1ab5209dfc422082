package share

import (
	"errors"

	"github.com/atotto/clipboard"
)

var ErrClipboardUnsupported = errors.New("no clipboard available (install xclip, xsel or wl-clipboard)")

// Clipboard - copies invite links to the system clipboard.
type Clipboard struct {
	write func(string) error
}

func NewClipboard() *Clipboard {
	if clipboard.Unsupported {
		return &Clipboard{write: func(string) error { return ErrClipboardUnsupported }}
	}

	return &Clipboard{write: clipboard.WriteAll}
}

func (that *Clipboard) Copy(text string) error {
	return that.write(text)
}
