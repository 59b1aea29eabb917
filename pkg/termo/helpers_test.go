package termo

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Draws a diagonal stroke on a transparent canvas, like a drawn signature.
func signatureDataURL(t *testing.T, w, h int, stroke color.Color) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		y := x * h / w
		for dy := -2; dy <= 2; dy++ {
			if y+dy >= 0 && y+dy < h {
				img.Set(x, y+dy, stroke)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sampleTermData() TermData {
	return TermData{
		TermNumber:       "TC-2025-1-V1",
		VerificationCode: "AbC123xYz0",
		Year:             2025,
		Term:             1,
		Department:       "Departamento de Ciência da Computação",
		ProjectTitle:     "Monitoria de Estruturas de Dados",
		ComponentCode:    "MATA40",
		ComponentName:    "Estruturas de Dados e Algoritmos I",
		VacancyID:        "V1",
		VacancyKind:      "Bolsista",
		StartDate:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StudentName:      "João da Silva",
		StudentEmail:     "joao@example.com",
		ProfessorName:    "Maria Souza",
		ProfessorEmail:   "maria@example.com",
	}
}
