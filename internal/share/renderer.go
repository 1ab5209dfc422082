package share

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultQRSize = 256

	margin     = 16
	lineHeight = 20
)

var (
	background = color.RGBA{R: 0xf5, G: 0xf8, B: 0xfa, A: 0xff}
	brand      = color.RGBA{R: 0x00, G: 0x55, B: 0x80, A: 0xff}
	textColor  = color.RGBA{R: 0x2d, G: 0x37, B: 0x48, A: 0xff}
)

// Renderer - draws challenge cards: a few lines of text above a QR code of the invite link.
type Renderer struct {
	logger    *slog.Logger
	qrSize    int
	outputDir string
}

func NewRenderer(logger *slog.Logger, qrSize int, outputDir string) *Renderer {
	if qrSize <= 0 {
		qrSize = DefaultQRSize
	}

	return &Renderer{
		logger:    logger.With("component", "renderer"),
		qrSize:    qrSize,
		outputDir: outputDir,
	}
}

// Render - the card as PNG bytes.
func (that *Renderer) Render(link string, lines []string) ([]byte, error) {
	code, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	qr := code.Image(that.qrSize)
	qrWidth := qr.Bounds().Dx()

	face := basicfont.Face7x13

	width := qrWidth
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}
	width += 2 * margin

	textHeight := len(lines) * lineHeight
	height := margin + textHeight + margin/2 + qr.Bounds().Dy() + margin

	card := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(card, card.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, line := range lines {
		ink := textColor
		if i == 0 {
			ink = brand
		}

		drawer := &font.Drawer{
			Dst:  card,
			Src:  image.NewUniform(ink),
			Face: face,
		}

		x := (width - drawer.MeasureString(line).Ceil()) / 2
		y := margin + (i+1)*lineHeight - 6
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}

	qrX := (width - qrWidth) / 2
	qrY := margin + textHeight + margin/2
	draw.Draw(card, image.Rect(qrX, qrY, qrX+qrWidth, qrY+qr.Bounds().Dy()), qr, qr.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err = png.Encode(&buf, card); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	return buf.Bytes(), nil
}

// Save - renders the card into the output directory and returns the file path.
func (that *Renderer) Save(name, link string, lines []string) (string, error) {
	data, err := that.Render(link, lines)
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(that.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(that.outputDir, safeFileName(name))
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write share image: %w", err)
	}

	that.logger.Debug("share image written", "path", path, "bytes", len(data))

	return path, nil
}

func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		default:
			return r
		}
	}, name)
}
