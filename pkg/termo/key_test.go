package termo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermNumber(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		term      int
		vacancyID string
		want      string
		wantErr   bool
	}{
		{"First term", 2025, 1, "V1", "TC-2025-1-V1", false},
		{"Second term", 2024, 2, "abc", "TC-2024-2-abc", false},
		{"Invalid term", 2025, 3, "V1", "", true},
		{"Invalid year", 0, 1, "V1", "", true},
		{"Empty vacancy", 2025, 1, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TermNumber(tt.year, tt.term, tt.vacancyID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "termos/TC-2025-1-V1.pdf", ObjectKey("TC-2025-1-V1"))
	assert.Equal(t, "termos/base/TC-2025-1-V1.pdf", BaseObjectKey("TC-2025-1-V1"))
}

func TestSignatureRegionsAreDisjoint(t *testing.T) {
	student, ok := RegionFor(SignatureTypeStudentCommitment)
	require.True(t, ok)
	professor, ok := RegionFor(SignatureTypeProfessorSelectionRecord)
	require.True(t, ok)

	assert.False(t, student.Overlaps(professor))
	assert.False(t, professor.Overlaps(student))
	assert.True(t, student.Overlaps(student))

	for _, r := range []Region{student, professor} {
		assert.LessOrEqual(t, r.X+r.Width, PageWidth)
		assert.LessOrEqual(t, r.Y+r.Height, PageHeight)
	}

	_, ok = RegionFor("WITNESS")
	assert.False(t, ok)
}
