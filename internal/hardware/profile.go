package hardware

import "github.com/powertrim/powertrim/internal/audit"

// Profile encodes machine-specific power tuning knowledge. Matches is a pure
// predicate over the snapshot; Audit produces findings without touching the
// live system.
type Profile interface {
	Name() string
	Matches(snap *Snapshot) bool
	Audit(snap *Snapshot) []audit.Finding
}

// Profiles returns the ordered registry of known profiles. More specific
// profiles come first; selection is first-match.
func Profiles() []Profile {
	return []Profile{
		Framework16AMD{},
		GenericLaptop{},
	}
}

// SelectProfile finds the first profile matching the snapshot, or nil when
// none matches.
func SelectProfile(snap *Snapshot) Profile {
	for _, p := range Profiles() {
		if p.Matches(snap) {
			return p
		}
	}
	return nil
}
