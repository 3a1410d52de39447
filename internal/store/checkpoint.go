package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/resumeblast/blastkit/internal/schemas"
)

// Keys used in the persistent store. The pending_* keys are the breadcrumbs a
// paid workflow writes before redirecting to the hosted checkout page.
const (
	KeyCheckpoint       = "pending_blast_checkpoint"
	KeyPendingConfig    = "pending_blast_config"
	KeySelectedPlan     = "selected_plan_type"
	KeyGuestID          = "guest_id"
	KeyGuestEmail       = "guest_email"
	KeyIsGuestSession   = "is_guest_session"
	KeyUploadedResumeID = "uploaded_resume_id"
)

// CheckpointResume identifies the uploaded resume a resumed workflow refetches.
type CheckpointResume struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
}

// CheckpointConfig is the campaign configuration chosen before redirect.
type CheckpointConfig struct {
	Plan           string `json:"plan,omitempty"`
	Industry       string `json:"industry"`
	Location       string `json:"location,omitempty"`
	RecruiterCount int    `json:"recruiter_count,omitempty"`
}

// CheckpointGuest carries the guest identity through the redirect, for
// workflows started without an account.
type CheckpointGuest struct {
	ID         string `json:"id"`
	EmailAlias string `json:"email_alias,omitempty"`
}

// BlastCheckpoint is the full workflow state persisted before a checkout
// redirect and read back by the resume path.
type BlastCheckpoint struct {
	Resume  CheckpointResume `json:"resume"`
	Config  CheckpointConfig `json:"config"`
	Guest   *CheckpointGuest `json:"guest,omitempty"`
	SavedAt time.Time        `json:"saved_at"`
}

// SaveCheckpoint validates and stages the checkpoint. The caller flushes the
// store before redirecting.
func SaveCheckpoint(s Store, cp BlastCheckpoint) error {
	if cp.SavedAt.IsZero() {
		cp.SavedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := schemas.ValidateCheckpoint(raw); err != nil {
		return fmt.Errorf("refusing to persist invalid checkpoint: %w", err)
	}
	if err := s.Set(KeyCheckpoint, string(raw)); err != nil {
		return err
	}
	// Legacy breadcrumb keys mirror the checkpoint so guest detection can
	// recognize an interrupted workflow without decoding the full record.
	cfgRaw, err := json.Marshal(cp.Config)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint config: %w", err)
	}
	if err := s.Set(KeyPendingConfig, string(cfgRaw)); err != nil {
		return err
	}
	if cp.Config.Plan != "" {
		if err := s.Set(KeySelectedPlan, cp.Config.Plan); err != nil {
			return err
		}
	}
	return nil
}

// LoadCheckpoint reads the persisted checkpoint. A missing record returns
// (nil, false, nil). A record that fails schema validation is cleared and
// reported as absent; a half-written breadcrumb must never drive a send.
func LoadCheckpoint(s Store) (*BlastCheckpoint, bool, error) {
	raw, ok, err := s.Get(KeyCheckpoint)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	if err := schemas.ValidateCheckpoint([]byte(raw)); err != nil {
		if clearErr := ClearCheckpoint(s); clearErr != nil {
			return nil, false, clearErr
		}
		return nil, false, nil
	}
	var cp BlastCheckpoint
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		if clearErr := ClearCheckpoint(s); clearErr != nil {
			return nil, false, clearErr
		}
		return nil, false, nil
	}
	return &cp, true, nil
}

// ClearCheckpoint removes the checkpoint and its breadcrumb keys.
func ClearCheckpoint(s Store) error {
	for _, key := range []string{KeyCheckpoint, KeyPendingConfig, KeySelectedPlan} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// HasPendingBreadcrumbs reports whether any interrupted-workflow key is
// present. Guest detection uses this as its last resort.
func HasPendingBreadcrumbs(s Store) bool {
	for _, key := range []string{KeyCheckpoint, KeyPendingConfig, KeySelectedPlan} {
		if _, ok, err := s.Get(key); err == nil && ok {
			return true
		}
	}
	return false
}
