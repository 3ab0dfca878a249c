package domain

import (
	"encoding/base64"
	"strings"
)

// SourceFile is a user-selected file as it arrives from the client.
// Data is discarded once the pipeline has produced an EncodedImage.
type SourceFile struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
}

// Target bounds the pipeline output for one upload slot.
type Target struct {
	MaxWidth  int   `yaml:"max_width" validate:"gt=0"`
	MaxHeight int   `yaml:"max_height" validate:"gt=0"`
	MaxBytes  int64 `yaml:"max_bytes" validate:"gt=0"`
}

// EncodedImage is the persistable pipeline result.
type EncodedImage struct {
	Format   ImageFormat
	MIMEType string
	Quality  int
	Width    int
	Height   int
	Data     []byte
}

// DataURL renders the payload as a data URL usable directly as an image source.
func (e *EncodedImage) DataURL() string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(e.MIMEType) + base64.StdEncoding.EncodedLen(len(e.Data)))
	b.WriteString("data:")
	b.WriteString(e.MIMEType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(e.Data))
	return b.String()
}

type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatWebP ImageFormat = "webp"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)

// AllowedMIMETypes is the set of declared types the pipeline accepts.
var AllowedMIMETypes = map[string]ImageFormat{
	MIMEJPEG: FormatJPEG,
	MIMEPNG:  FormatPNG,
	MIMEWebP: FormatWebP,
}

// Slot names an upload target on the header customization page.
type Slot string

const (
	SlotBackground Slot = "background"
	SlotLogo       Slot = "logo"
)

func (s Slot) Valid() bool {
	return s == SlotBackground || s == SlotLogo
}

const (
	DefaultEncodeQuality  = 80
	MaxImageDimension     = 16384
	BackgroundMaxWidth    = 800
	BackgroundMaxHeight   = 200
	BackgroundMaxBytes    = 2 << 20
	LogoMaxWidth          = 120
	LogoMaxHeight         = 40
	LogoMaxBytes          = 1 << 20
	DefaultMaxUploadBytes = 8 << 20
)
