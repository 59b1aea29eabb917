package constant

import "time"

type VacancyKind string

const (
	VacancyKindScholarship VacancyKind = "BOLSISTA"
	VacancyKindVolunteer   VacancyKind = "VOLUNTARIO"
)

func (k VacancyKind) Label() string {
	switch k {
	case VacancyKindScholarship:
		return "Bolsista"
	case VacancyKindVolunteer:
		return "Voluntário"
	}
	return string(k)
}

const (
	QUERY_TIMEOUT_DURATION = 10 * time.Second
	STORAGE_TIMEOUT        = 30 * time.Second
	TERMO_DOWNLOAD_TTL     = 24 * time.Hour
)
