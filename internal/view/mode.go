// Package view implements the top-level navigation state machine. All
// transitions flow through a single Controller so guard rules live in one
// place instead of being scattered across call sites.
package view

import "fmt"

// Mode is the active top-level screen.
type Mode int

const (
	ModeJobseekerHome Mode = iota
	ModeDashboard
	ModeWorkbench
	ModeRecruiter
	ModeEmployerNetwork
	ModeAdmin
	ModeContact
	ModePrivacy
	ModeTerms
	ModeRefund
)

var modeNames = map[Mode]string{
	ModeJobseekerHome:   "jobseeker-home",
	ModeDashboard:       "dashboard",
	ModeWorkbench:       "workbench",
	ModeRecruiter:       "recruiter",
	ModeEmployerNetwork: "employer-network",
	ModeAdmin:           "admin",
	ModeContact:         "contact",
	ModePrivacy:         "privacy",
	ModeTerms:           "terms",
	ModeRefund:          "refund",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode converts a mode name back to a Mode.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeJobseekerHome, fmt.Errorf("unknown view mode: %q", name)
}

// Legal reports whether m is one of the informational pages reachable from
// anywhere (no authentication gate).
func (m Mode) Legal() bool {
	switch m {
	case ModeContact, ModePrivacy, ModeTerms, ModeRefund:
		return true
	}
	return false
}
