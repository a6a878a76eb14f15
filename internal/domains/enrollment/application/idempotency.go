package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

type normalizedSubmission struct {
	FullName                 string   `json:"fullName"`
	Email                    string   `json:"email"`
	PhoneNumber              string   `json:"phoneNumber"`
	AboutMe                  string   `json:"aboutMe"`
	Region                   string   `json:"region"`
	PreferredLecturingCities []string `json:"preferredLecturingCities"`
	PreferredTrainingIDs     []int64  `json:"preferredTrainingIds"`
	GdprConsentGiven         bool     `json:"gdprConsentGiven"`
}

// FingerprintSubmission builds a deterministic hash of a form, ignoring the enrollment id.
func FingerprintSubmission(form domain.SubmitRecruitmentForm) (string, error) {
	ids := make([]int64, 0, len(form.PreferredTrainingIDs))
	for _, id := range form.PreferredTrainingIDs {
		ids = append(ids, int64(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	cities := make([]string, 0, len(form.PreferredLecturingCities))
	for _, c := range form.PreferredLecturingCities {
		cities = append(cities, strings.TrimSpace(c))
	}
	payload, err := json.Marshal(normalizedSubmission{
		FullName:                 strings.TrimSpace(form.FullName),
		Email:                    strings.ToLower(strings.TrimSpace(form.Email)),
		PhoneNumber:              strings.TrimSpace(form.PhoneNumber),
		AboutMe:                  form.AboutMe,
		Region:                   strings.TrimSpace(form.Region),
		PreferredLecturingCities: cities,
		PreferredTrainingIDs:     ids,
		GdprConsentGiven:         form.GdprConsentGiven,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
