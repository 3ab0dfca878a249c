package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/usecase/processor/operations"

	"github.com/chai2010/webp"
	"github.com/wb-go/wbf/zlog"
)

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

type ImageProcessor struct {
	resizer *operations.Resizer
	format  domain.ImageFormat
	quality int
	logger  *zlog.Zerolog
}

func NewImageProcessor(format domain.ImageFormat, quality int, logger *zlog.Zerolog) *ImageProcessor {
	if quality <= 0 || quality > 100 {
		quality = domain.DefaultEncodeQuality
	}
	if format != domain.FormatWebP {
		format = domain.FormatJPEG
	}
	return &ImageProcessor{
		resizer: operations.NewResizer(),
		format:  format,
		quality: quality,
		logger:  logger,
	}
}

// NormalizeMIME lower-cases a declared content type and strips its parameters.
func NormalizeMIME(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Validate is the synchronous gate: declared type first, then size.
func (p *ImageProcessor) Validate(file *domain.SourceFile, maxBytes int64) error {
	if _, ok := domain.AllowedMIMETypes[NormalizeMIME(file.MIMEType)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, file.MIMEType)
	}

	size := file.Size
	if n := int64(len(file.Data)); n > size {
		size = n
	}
	if size > maxBytes {
		return &FileTooLargeError{Size: size, Limit: maxBytes}
	}

	return nil
}

// Process validates file, fits it inside target and re-encodes it. It has no side
// effects; persisting the result is up to the caller.
func (p *ImageProcessor) Process(ctx context.Context, file domain.SourceFile, target domain.Target) (*domain.EncodedImage, error) {
	if err := p.Validate(&file, target.MaxBytes); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > domain.MaxImageDimension || cfg.Height > domain.MaxImageDimension {
		return nil, fmt.Errorf("%w: dimensions %dx%d out of range", ErrDecodeFailed, cfg.Width, cfg.Height)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, sourceFormat, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	bounds := img.Bounds()
	width, height := operations.FitSize(bounds.Dx(), bounds.Dy(), target.MaxWidth, target.MaxHeight)
	fitted := p.resizer.Fit(img, width, height)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, format, err := p.resizer.Encode(fitted, p.format, p.quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	p.logger.Debug().
		Str("filename", file.Name).
		Str("source_format", sourceFormat).
		Int("source_width", bounds.Dx()).
		Int("source_height", bounds.Dy()).
		Int("width", width).
		Int("height", height).
		Int("size", len(data)).
		Msg("Image re-encoded")

	return &domain.EncodedImage{
		Format:   format,
		MIMEType: "image/" + string(format),
		Quality:  p.quality,
		Width:    width,
		Height:   height,
		Data:     data,
	}, nil
}
