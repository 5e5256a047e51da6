package archive

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func solidJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to build test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeScanResizesOversizedImage(t *testing.T) {
	data := solidJPEG(t, MaxScanDimension+400, 300)

	out, err := NormalizeScan(data)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("normalized output is not valid jpeg: %v", err)
	}
	if img.Bounds().Dx() > MaxScanDimension {
		t.Errorf("expected width capped at %d, got %d", MaxScanDimension, img.Bounds().Dx())
	}
}

func TestNormalizeScanLeavesSmallImageUnresized(t *testing.T) {
	data := solidJPEG(t, 400, 300)

	out, err := NormalizeScan(data)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("normalized output is not valid jpeg: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Errorf("expected dimensions preserved at 400x300, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestNormalizeScanRejectsOversizedUpload(t *testing.T) {
	_, err := NormalizeScan(make([]byte, MaxScanSize+1))
	if err != ErrScanTooLarge {
		t.Errorf("expected ErrScanTooLarge, got %v", err)
	}
}

func TestNormalizeScanRejectsGarbageData(t *testing.T) {
	_, err := NormalizeScan([]byte("not an image"))
	if err != ErrInvalidScanImage {
		t.Errorf("expected ErrInvalidScanImage, got %v", err)
	}
}

func TestDocumentSnapshotKeyAndSignatureScanKey(t *testing.T) {
	if got := DocumentSnapshotKey("snap1"); got != "document-snapshots/snap1.json" {
		t.Errorf("unexpected key: %s", got)
	}
	if got := SignatureScanKey("sign1"); got != "signature-scans/sign1.jpg" {
		t.Errorf("unexpected key: %s", got)
	}
}
