package termo

import "time"

// What the projection needs to know about a persisted signature.
type SignatureFact struct {
	Type         SignatureType
	SignerUserID string
	SignedAt     *time.Time
}

type Projection struct {
	Status  Status
	Signed  map[SignatureType]SignatureFact
	Missing []SignatureType
}

func (p Projection) Has(st SignatureType) bool {
	_, ok := p.Signed[st]
	return ok
}

func (p Projection) IsComplete() bool {
	return p.Status == StatusComplete
}

// Project derives the aggregate status of one term from its signature records only.
// Unknown types are ignored, duplicates of a type count once.
func Project(facts []SignatureFact) Projection {
	p := Projection{Signed: make(map[SignatureType]SignatureFact, len(SignatureTypes))}

	for _, f := range facts {
		if !f.Type.IsValid() {
			continue
		}
		if _, exists := p.Signed[f.Type]; exists {
			continue
		}
		p.Signed[f.Type] = f
	}

	for _, st := range SignatureTypes {
		if !p.Has(st) {
			p.Missing = append(p.Missing, st)
		}
	}

	switch len(p.Signed) {
	case 0:
		p.Status = StatusPending
	case len(SignatureTypes):
		p.Status = StatusComplete
	default:
		p.Status = StatusPartial
	}

	return p
}
