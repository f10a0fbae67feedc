package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension is the maximum width or height for stored photos. Larger
// uploads are downscaled at ingest so the serialized slot stays bounded.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// MaxVideoBytes is the maximum accepted video size.
const MaxVideoBytes = 50 << 20

// allowedImageMIME lists the accepted photo input types.
var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// allowedVideoMIME lists the accepted video input types.
var allowedVideoMIME = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

// ProcessResult contains processed media data ready for a Store.
type ProcessResult struct {
	Data []byte
	MIME string
}

// ProcessImage validates photo data by sniffing bytes (not trusting
// filenames), downscales if larger than MaxDimension, and re-encodes with
// compression. Always outputs JPEG for consistency and smaller payloads.
func ProcessImage(data []byte) (*ProcessResult, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("sniffing image type: %w", err)
	}
	if !allowedImageMIME[kind.MIME.Value] {
		return nil, fmt.Errorf("unsupported image format: %q (only JPEG, PNG and WebP accepted)", kind.MIME.Value)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &ProcessResult{
		Data: buf.Bytes(),
		MIME: "image/jpeg",
	}, nil
}

// ProcessVideo validates video data by sniffing bytes and enforces the size
// cap. Videos are stored as uploaded, without transcoding.
func ProcessVideo(data []byte) (*ProcessResult, error) {
	if len(data) > MaxVideoBytes {
		return nil, fmt.Errorf("video too large: %d bytes (max %d)", len(data), MaxVideoBytes)
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("sniffing video type: %w", err)
	}
	if !allowedVideoMIME[kind.MIME.Value] {
		return nil, fmt.Errorf("unsupported video format: %q (only MP4, MOV and WebM accepted)", kind.MIME.Value)
	}

	return &ProcessResult{Data: data, MIME: kind.MIME.Value}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses high-quality Catmull-Rom interpolation.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	// Calculate new dimensions preserving aspect ratio.
	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
