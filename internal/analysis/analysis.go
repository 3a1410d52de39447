// Package analysis turns extracted resume text into a candidate profile.
// The backend does the real work; when it cannot, a local extraction keeps
// the workflow moving with a degraded profile.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/resumeblast/blastkit/internal/schemas"
)

// Analysis is the candidate profile the configure and send steps consume.
type Analysis struct {
	CandidateName     string              `json:"candidate_name,omitempty"`
	CandidateEmail    string              `json:"candidate_email,omitempty"`
	CandidatePhone    string              `json:"candidate_phone,omitempty"`
	CandidateLocation string              `json:"candidate_location,omitempty"`
	CurrentRole       string              `json:"current_role,omitempty"`
	SeniorityLevel    string              `json:"seniority_level,omitempty"`
	YearsExperience   float64             `json:"years_experience,omitempty"`
	Industry          string              `json:"industry,omitempty"`
	EducationLevel    string              `json:"education_level,omitempty"`
	AllSkills         map[string][]string `json:"all_skills,omitempty"`
	TopSkills         []string            `json:"top_skills,omitempty"`
	ATSScore          float64             `json:"ats_score,omitempty"`
	ScoreBreakdown    map[string]float64  `json:"score_breakdown,omitempty"`
	Recommendation    string              `json:"recommendation,omitempty"`
	ExtractionMethod  string              `json:"extraction_method,omitempty"`
}

// Extraction methods recorded on the profile.
const (
	MethodBackend = "backend"
	MethodLocal   = "local_fallback"
)

// FallbackATSScore is assigned when only local extraction is available.
const FallbackATSScore = 70

var (
	emailPattern = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,2}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// LocalExtract builds a degraded profile from resume text using pattern
// matching only.
func LocalExtract(text string) *Analysis {
	a := &Analysis{
		ATSScore:         FallbackATSScore,
		ExtractionMethod: MethodLocal,
	}
	if m := emailPattern.FindString(text); m != "" {
		a.CandidateEmail = strings.ToLower(m)
	}
	if m := phonePattern.FindString(text); m != "" {
		a.CandidatePhone = strings.TrimSpace(m)
	}
	// First non-empty line is the best local guess at a name, as long as it
	// does not look like contact data.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.Contains(line, "@") && len(line) < 60 {
			a.CandidateName = line
		}
		break
	}
	return a
}

// Poster is the slice of the backend client the analyzer needs.
type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Analyzer calls the backend analysis endpoint with a local safety net.
type Analyzer struct {
	backend Poster
}

// NewAnalyzer wires the backend client.
func NewAnalyzer(backend Poster) *Analyzer {
	return &Analyzer{backend: backend}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze profiles resume text. It never returns an error for backend
// trouble: an unreachable service, a failure status or an invalid payload
// all degrade to the local profile.
func (a *Analyzer) Analyze(ctx context.Context, text string) *Analysis {
	local := LocalExtract(text)
	if a.backend == nil {
		return local
	}

	var raw json.RawMessage
	if err := a.backend.Post(ctx, "/api/analyze", analyzeRequest{Text: text}, &raw); err != nil {
		log.Printf("[analysis] backend analyze failed, using local extraction: %v", err)
		return local
	}
	if err := schemas.ValidateAnalysis(raw); err != nil {
		log.Printf("[analysis] backend payload failed schema validation, using local extraction: %v", err)
		return local
	}

	var remote Analysis
	if err := json.Unmarshal(raw, &remote); err != nil {
		log.Printf("[analysis] backend payload undecodable, using local extraction: %v", err)
		return local
	}
	remote.ExtractionMethod = MethodBackend
	return Merge(&remote, local)
}

// Merge fills gaps in the primary profile from the fallback. A backend field
// loses only when it is empty or an explicit "Not Found".
func Merge(primary, fallback *Analysis) *Analysis {
	out := *primary
	if missing(out.CandidateName) {
		out.CandidateName = fallback.CandidateName
	}
	if missing(out.CandidateEmail) {
		out.CandidateEmail = fallback.CandidateEmail
	}
	if missing(out.CandidatePhone) {
		out.CandidatePhone = fallback.CandidatePhone
	}
	if out.ATSScore == 0 {
		out.ATSScore = fallback.ATSScore
	}
	return &out
}

func missing(v string) bool {
	return v == "" || strings.EqualFold(strings.TrimSpace(v), "not found")
}

// FlattenSkills merges the categorized skill buckets into one deduplicated
// list, top skills first.
func FlattenSkills(a *Analysis) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(skill string) {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(skill))
	}
	for _, s := range a.TopSkills {
		add(s)
	}
	for _, bucket := range a.AllSkills {
		for _, s := range bucket {
			add(s)
		}
	}
	return out
}

// ScoreRating labels an ATS score for display.
func ScoreRating(score float64) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "needs work"
	}
}

// Raw serializes the profile for persistence or the guest analysis endpoint.
func (a *Analysis) Raw() (json.RawMessage, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	return raw, nil
}
