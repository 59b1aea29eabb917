package termo

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// A signature to be embedded, the image is the raw payload as stored (data URL or base64).
type Stamp struct {
	Type  SignatureType
	Image string
}

// Where a stamp ends up, used by callers and tests to inspect the layout without parsing PDFs.
type Placement struct {
	Type   SignatureType
	Page   int
	Region Region
}

var ErrNoBaseDocument = errors.New("base document is empty")

type Overlayer struct {
	conf *model.Configuration
}

func NewOverlayer() *Overlayer {
	conf := model.NewDefaultConfiguration()
	// Plain objects keep the output diffable, which makes idempotence checks trivial
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return &Overlayer{conf: conf}
}

// Plan sorts the stamps by signature type and resolves their fixed regions.
// It rejects unknown types and more than one stamp per type.
func Plan(stamps []Stamp) ([]Placement, error) {
	sorted := make([]Stamp, len(stamps))
	copy(sorted, stamps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Type < sorted[j].Type })

	placements := make([]Placement, 0, len(sorted))
	seen := make(map[SignatureType]bool, len(sorted))
	for _, s := range sorted {
		reg, ok := RegionFor(s.Type)
		if !ok {
			return nil, fmt.Errorf("no signature region for type %q", s.Type)
		}
		if seen[s.Type] {
			return nil, fmt.Errorf("more than one signature of type %q", s.Type)
		}
		seen[s.Type] = true

		placements = append(placements, Placement{Type: s.Type, Page: SignaturePage, Region: reg})
	}

	return placements, nil
}

// Overlay embeds every stamp on top of base and returns the new document.
// The result only depends on base and the set of stamps, not on their order.
func (o *Overlayer) Overlay(base []byte, stamps []Stamp) ([]byte, error) {
	if len(base) == 0 {
		return nil, ErrNoBaseDocument
	}

	placements, err := Plan(stamps)
	if err != nil {
		return nil, err
	}

	images := make(map[SignatureType]string, len(stamps))
	for _, s := range stamps {
		images[s.Type] = s.Image
	}

	current := base
	for _, p := range placements {
		next, err := o.embed(current, p, images[p.Type])
		if err != nil {
			return nil, fmt.Errorf("failed to embed %s signature: %w", p.Type, err)
		}
		current = next
	}

	if len(placements) == 0 {
		return append([]byte(nil), base...), nil
	}

	return current, nil
}

func (o *Overlayer) embed(pdf []byte, p Placement, payload string) ([]byte, error) {
	img, err := DecodeSignatureImage(payload)
	if err != nil {
		return nil, err
	}

	// 1px = 1pt with scale:1 abs, so the image is sized exactly to the region
	pngBytes, err := FitSignature(img, int(math.Round(p.Region.Width)), int(math.Round(p.Region.Height)))
	if err != nil {
		return nil, err
	}

	// In pdfcpu, y is inverted, the offset is taken from the top-left anchor
	description := fmt.Sprintf("pos:tl, off:%.2f %.2f, scale:1 abs, rotation:0, opacity:1", p.Region.X, p.Region.Y*-1)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(pngBytes), description, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build image watermark: %w", err)
	}

	var out bytes.Buffer
	pages := []string{strconv.Itoa(p.Page)}
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, pages, wm, o.conf); err != nil {
		return nil, fmt.Errorf("failed to apply image watermark: %w", err)
	}

	return out.Bytes(), nil
}

func (o *Overlayer) PageCount(pdf []byte) (int, error) {
	return api.PageCount(bytes.NewReader(pdf), o.conf)
}
