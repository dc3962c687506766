package presence

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	maxBannerWidth  = 1024
	darkenBy        = 25
	maxArtworkBytes = 16 << 20
	jpegQuality     = 90
)

// BannerRenderer produces the avatar image for a map artwork and mode code.
type BannerRenderer interface {
	Render(ctx context.Context, imageURL, label string) ([]byte, error)
}

type Renderer struct {
	client *http.Client
	font   *opentype.Font
}

func NewRenderer(client *http.Client) (*Renderer, error) {
	if client == nil {
		client = http.DefaultClient
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse banner font: %w", err)
	}

	return &Renderer{client: client, font: f}, nil
}

// Render downloads the artwork, darkens it and draws label across it. The
// result is JPEG encoded.
func (r *Renderer) Render(ctx context.Context, imageURL, label string) ([]byte, error) {
	src, err := r.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	img := fit(src)
	darken(img, darkenBy)

	if label != "" {
		if err := r.drawLabel(img, label); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode banner: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) download(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download artwork: %w", err)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download artwork: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download artwork %s: unexpected status %d", imageURL, res.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(res.Body, maxArtworkBytes))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	return img, nil
}

// fit copies src into an RGBA canvas no wider than maxBannerWidth.
func fit(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxBannerWidth {
		h = h * maxBannerWidth / w
		w = maxBannerWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst
}

func darken(img *image.RGBA, by uint8) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		for c := i; c < i+3; c++ {
			if img.Pix[c] > by {
				img.Pix[c] -= by
			} else {
				img.Pix[c] = 0
			}
		}
	}
}

// drawLabel places the mode code roughly in the middle, sized relative to the
// image height.
func (r *Renderer) drawLabel(img *image.RGBA, label string) error {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    h / 1.7,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create banner face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(w / 3.5)),
			Y: fixed.I(int(h/4.8)) + face.Metrics().Ascent,
		},
	}
	d.DrawString(label)
	return nil
}
