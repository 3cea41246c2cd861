package cover

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/fetcher"
	"go.uber.org/zap"
)

// createTestPNG generates a simple PNG image for testing
func createTestPNG(t *testing.T, width, height int, col color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, col)
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to create test PNG: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newResolver(maxEdge int) *Resolver {
	logger := zap.NewNop()
	return NewResolver(logger, NewImagingDecoder(logger, fetcher.NewArtFetcher(logger), maxEdge))
}

func TestResolver_Resolve(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	validPNG := writeFile(t, "cover.png", createTestPNG(t, 64, 64, red))
	corrupt := writeFile(t, "corrupt.jpg", []byte{0xFF, 0xD8, 0xFF, 0x00, 0x00})
	empty := writeFile(t, "empty.png", nil)
	missing := filepath.Join(t.TempDir(), "nope.png")

	tests := []struct {
		name      string
		showCover bool
		path      string
		onColor   domain.ARGB
		wantKind  domain.CoverKind
		wantTint  domain.ARGB
	}{
		{name: "Hidden", showCover: false, path: validPNG, onColor: 0xFF00FF00, wantKind: domain.CoverHidden},
		{name: "Bitmap not tinted", showCover: true, path: validPNG, onColor: 0xFF00FF00, wantKind: domain.CoverBitmap},
		{name: "No path", showCover: true, path: "", onColor: 0xFF00FF00, wantKind: domain.CoverPlaceholder, wantTint: 0xFF00FF00},
		{name: "Missing file", showCover: true, path: missing, onColor: 0xFF00FF00, wantKind: domain.CoverPlaceholder, wantTint: 0xFF00FF00},
		{name: "Corrupt bytes", showCover: true, path: corrupt, onColor: 0xFF00FF00, wantKind: domain.CoverPlaceholder, wantTint: 0xFF00FF00},
		{name: "Empty file", showCover: true, path: empty, onColor: 0xFF00FF00, wantKind: domain.CoverPlaceholder, wantTint: 0xFF00FF00},
		{name: "Zero tint becomes white", showCover: true, path: missing, onColor: 0, wantKind: domain.CoverPlaceholder, wantTint: domain.OpaqueWhite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := newResolver(0).Resolve(context.Background(), tt.showCover, tt.path, tt.onColor)

			if plan.Kind != tt.wantKind {
				t.Fatalf("Kind = %q, want %q", plan.Kind, tt.wantKind)
			}
			switch plan.Kind {
			case domain.CoverBitmap:
				if plan.Bitmap == nil {
					t.Error("expected a bitmap")
				}
				if plan.Tinted || plan.Tint != 0 {
					t.Errorf("bitmap must not be tinted, got tint %v", plan.Tint)
				}
			case domain.CoverPlaceholder:
				if plan.Glyph != domain.GlyphMusicNote {
					t.Errorf("Glyph = %q", plan.Glyph)
				}
				if !plan.Tinted || plan.Tint != tt.wantTint {
					t.Errorf("Tint = %v, want %v", plan.Tint, tt.wantTint)
				}
			case domain.CoverHidden:
				if plan.Bitmap != nil {
					t.Error("hidden cover must not carry a bitmap")
				}
			}
		})
	}
}

func TestImagingDecoder_Downscales(t *testing.T) {
	data := new(bytes.Buffer)
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	if err := jpeg.Encode(data, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "big.jpg", data.Bytes())

	logger := zap.NewNop()
	dec := NewImagingDecoder(logger, fetcher.NewArtFetcher(logger), 100)

	out, err := dec.Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("expected 100x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestImagingDecoder_SmallImageUntouched(t *testing.T) {
	path := writeFile(t, "small.png", createTestPNG(t, 10, 20, color.White))
	logger := zap.NewNop()
	dec := NewImagingDecoder(logger, fetcher.NewArtFetcher(logger), 0)

	out, err := dec.Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 10 || b.Dy() != 20 {
		t.Errorf("expected 10x20, got %dx%d", b.Dx(), b.Dy())
	}
}

// withPNGSize rewrites the IHDR of an encoded PNG to claim width x height
func withPNGSize(t *testing.T, data []byte, width, height uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	// Signature (8) + length (4) + "IHDR" (4), then 13 bytes of header data and the CRC
	if string(out[12:16]) != "IHDR" {
		t.Fatal("expected IHDR as first chunk")
	}
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestImagingDecoder_RejectsHugeHeaderBeforeDecoding(t *testing.T) {
	data := withPNGSize(t, createTestPNG(t, 4, 4, color.White), 40000, 40000)
	path := writeFile(t, "huge.png", data)

	logger := zap.NewNop()
	dec := NewImagingDecoder(logger, fetcher.NewArtFetcher(logger), 0)

	out, err := dec.Decode(context.Background(), path)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if out != nil {
		t.Error("expected no image")
	}
}

func TestImagingDecoder_PixelBudgetScalesWithMaxEdge(t *testing.T) {
	path := writeFile(t, "wide.png", createTestPNG(t, 1601, 40, color.White))
	logger := zap.NewNop()

	_, err := NewImagingDecoder(logger, fetcher.NewArtFetcher(logger), 100).Decode(context.Background(), path)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("expected 1601px to exceed the 1600px budget of maxEdge 100, got %v", err)
	}

	out, err := NewImagingDecoder(logger, fetcher.NewArtFetcher(logger), 101).Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("expected 1601px to fit the budget of maxEdge 101: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 101 {
		t.Errorf("expected downscale to 101px wide, got %d", b.Dx())
	}
}

type panickyDecoderFetcher struct{}

func (panickyDecoderFetcher) Fetch(context.Context, string) ([]byte, error) {
	panic("boom")
}

func TestImagingDecoder_PanicIsError(t *testing.T) {
	dec := NewImagingDecoder(zap.NewNop(), panickyDecoderFetcher{}, 0)
	if _, err := dec.Decode(context.Background(), "x"); err == nil {
		t.Error("expected panic to surface as error")
	}
}
