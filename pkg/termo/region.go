package termo

// A4 in points
const (
	PageWidth  = 595.28
	PageHeight = 841.89
)

// Page that receives the signatures.
const SignaturePage = 1

// Rect in points, anchored at the top-left corner of the page.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Region) Overlaps(o Region) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

var signatureRegions = map[SignatureType]Region{
	SignatureTypeStudentCommitment:        {X: 62, Y: 668, Width: 200, Height: 70},
	SignatureTypeProfessorSelectionRecord: {X: 333, Y: 668, Width: 200, Height: 70},
}

func RegionFor(st SignatureType) (Region, bool) {
	r, ok := signatureRegions[st]
	return r, ok
}

// Converts pt to mm, gofpdf works in mm
func ptToMM(pt float64) float64 {
	return pt * 25.4 / 72
}
