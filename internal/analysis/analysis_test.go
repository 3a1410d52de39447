package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
Senior Software Engineer

Contact: Jane.Doe@Example.COM | (555) 123-4567

Experience:
- Built distributed systems
- Led a platform team`

func TestLocalExtract(t *testing.T) {
	a := LocalExtract(sampleResume)

	assert.Equal(t, "jane.doe@example.com", a.CandidateEmail)
	assert.Contains(t, a.CandidatePhone, "555")
	assert.Equal(t, "Jane Doe", a.CandidateName)
	assert.Equal(t, float64(FallbackATSScore), a.ATSScore)
	assert.Equal(t, MethodLocal, a.ExtractionMethod)
}

func TestLocalExtract_NoContactInfo(t *testing.T) {
	a := LocalExtract("some text without anything useful in it at all")

	assert.Empty(t, a.CandidateEmail)
	assert.Empty(t, a.CandidatePhone)
	assert.Equal(t, float64(FallbackATSScore), a.ATSScore)
}

type fakePoster struct {
	payload json.RawMessage
	err     error
	called  bool
}

func (f *fakePoster) Post(ctx context.Context, path string, body, out any) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	*(out.(*json.RawMessage)) = f.payload
	return nil
}

func TestAnalyze_BackendSuccess(t *testing.T) {
	poster := &fakePoster{payload: json.RawMessage(`{
		"candidate_name": "Jane Doe",
		"current_role": "Senior Software Engineer",
		"ats_score": 88,
		"top_skills": ["Go", "Kubernetes"]
	}`)}

	a := NewAnalyzer(poster).Analyze(context.Background(), sampleResume)

	assert.Equal(t, MethodBackend, a.ExtractionMethod)
	assert.Equal(t, "Jane Doe", a.CandidateName)
	assert.Equal(t, 88.0, a.ATSScore)
	// Gap filled from local extraction
	assert.Equal(t, "jane.doe@example.com", a.CandidateEmail)
}

func TestAnalyze_BackendErrorDegradesLocally(t *testing.T) {
	poster := &fakePoster{err: errors.New("connection refused")}

	a := NewAnalyzer(poster).Analyze(context.Background(), sampleResume)

	assert.Equal(t, MethodLocal, a.ExtractionMethod)
	assert.Equal(t, "jane.doe@example.com", a.CandidateEmail)
	assert.Equal(t, float64(FallbackATSScore), a.ATSScore)
}

func TestAnalyze_InvalidPayloadDegradesLocally(t *testing.T) {
	poster := &fakePoster{payload: json.RawMessage(`{"ats_score": 400}`)}

	a := NewAnalyzer(poster).Analyze(context.Background(), sampleResume)

	assert.Equal(t, MethodLocal, a.ExtractionMethod)
}

func TestAnalyze_NilBackend(t *testing.T) {
	a := NewAnalyzer(nil).Analyze(context.Background(), sampleResume)
	assert.Equal(t, MethodLocal, a.ExtractionMethod)
}

func TestMerge_NotFoundTreatedAsMissing(t *testing.T) {
	primary := &Analysis{CandidateName: "Not Found", CandidateEmail: "real@example.com"}
	fallback := &Analysis{CandidateName: "Jane Doe", CandidateEmail: "fallback@example.com", ATSScore: 70}

	merged := Merge(primary, fallback)

	assert.Equal(t, "Jane Doe", merged.CandidateName)
	assert.Equal(t, "real@example.com", merged.CandidateEmail)
	assert.Equal(t, 70.0, merged.ATSScore)
}

func TestFlattenSkills(t *testing.T) {
	a := &Analysis{
		TopSkills: []string{"Go", "PostgreSQL"},
		AllSkills: map[string][]string{
			"technical": {"go", "Docker", "PostgreSQL"},
		},
	}

	skills := FlattenSkills(a)

	assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, skills)
}

func TestScoreRating(t *testing.T) {
	assert.Equal(t, "excellent", ScoreRating(90))
	assert.Equal(t, "good", ScoreRating(70))
	assert.Equal(t, "fair", ScoreRating(55))
	assert.Equal(t, "needs work", ScoreRating(30))
}

func TestRaw_RoundTrip(t *testing.T) {
	a := &Analysis{CandidateName: "Jane Doe", ATSScore: 82}

	raw, err := a.Raw()
	require.NoError(t, err)

	var back Analysis
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a.CandidateName, back.CandidateName)
	assert.Equal(t, a.ATSScore, back.ATSScore)
}
