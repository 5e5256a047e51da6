package archive

import (
	"bytes"
	"errors"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const (
	// MaxScanSize bounds a signature scan upload, matching the teacher's
	// image_service.go MaxImageSize limit.
	MaxScanSize = 5 * 1024 * 1024
	// MaxScanDimension is the longest edge a normalized scan is resized
	// to (spec.md's "resize to a max dimension").
	MaxScanDimension = 1600
	scanJPEGQuality  = 85
)

var (
	ErrScanTooLarge     = errors.New("signature scan exceeds the maximum upload size")
	ErrInvalidScanImage = errors.New("signature scan is not a decodable image")
)

// NormalizeScan EXIF-orients and resizes a signature scan to a bounded
// longest edge, re-encoding as JPEG for archival. Adapted from the
// teacher's ImageService.ProcessAndUpload, narrowed from the
// thumbnail/display/original variant set to the single normalized
// rendition a signature scan needs.
func NormalizeScan(data []byte) ([]byte, error) {
	if len(data) > MaxScanSize {
		return nil, ErrScanTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidScanImage
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxScanDimension || bounds.Dy() > MaxScanDimension {
		if bounds.Dx() >= bounds.Dy() {
			img = imaging.Resize(img, MaxScanDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, MaxScanDimension, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: scanJPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
