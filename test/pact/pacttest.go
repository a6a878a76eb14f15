//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "lecturer-recruitment-api"
	ConsumerName = "recruitment-portal"

	StateCampaignOpen      = "recruitment campaign 7 is open"
	StateEnrollmentExists  = "enrollment 0b5c3e9e-2f4a-4d71-9a8e-7d1f0c6b2a11 exists"
	StateEnrollmentMissing = "no enrollment 9f9f9f9f-0000-4000-8000-000000000404"
)

const (
	ExistingEnrollmentID = "0b5c3e9e-2f4a-4d71-9a8e-7d1f0c6b2a11"
	MissingEnrollmentID  = "9f9f9f9f-0000-4000-8000-000000000404"

	CampaignID     int64 = 7
	TrainingID     int64 = 71
	CoordinatorID  int64 = 42
	CandidateName        = "Anna Kowalska"
	CandidateEmail       = "anna.kowalska@example.pact"
	CandidateRegion      = "Małopolska"
	CandidateCity        = "Kraków"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the recruitment portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleFormPayload is the submission the portal sends for a new candidate.
func ExampleFormPayload() map[string]any {
	return map[string]any{
		"fullName":                 CandidateName,
		"email":                    CandidateEmail,
		"phoneNumber":              "+48 600 100 200",
		"region":                   CandidateRegion,
		"preferredLecturingCities": []string{CandidateCity},
		"preferredTrainingIds":     []int64{TrainingID},
		"gdprConsentGiven":         true,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
