package termo

import "fmt"

const (
	KeyPrefix   = "termos"
	ContentType = "application/pdf"
)

// Human facing term number, e.g. TC-2025-1-<vacancyId>
func TermNumber(year, term int, vacancyID string) (string, error) {
	if term != 1 && term != 2 {
		return "", fmt.Errorf("invalid academic term %d, expected 1 or 2", term)
	}
	if year <= 0 {
		return "", fmt.Errorf("invalid academic year %d", year)
	}
	if vacancyID == "" {
		return "", fmt.Errorf("vacancy id cannot be empty")
	}

	return fmt.Sprintf("TC-%d-%d-%s", year, term, vacancyID), nil
}

// Object key of the signed document: termos/TC-{year}-{term}-{vacancyId}.pdf
func ObjectKey(termNumber string) string {
	return fmt.Sprintf("%s/%s.pdf", KeyPrefix, termNumber)
}

// Object key of the unsigned base the signed document is rebuilt from.
func BaseObjectKey(termNumber string) string {
	return fmt.Sprintf("%s/base/%s.pdf", KeyPrefix, termNumber)
}
