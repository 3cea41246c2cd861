// Package layout picks the widget layout for one instance.
package layout

import "github.com/genricoloni/mucwidget/internal/domain"

// DefaultTallThreshold is the minimum height in dp at which the size policy expands.
const DefaultTallThreshold = 100

// Selector applies exactly one layout policy. It holds no state besides its
// configuration, so the same inputs always select the same layout.
type Selector struct {
	policy    domain.LayoutPolicy
	threshold int
}

// NewSelector creates a selector. Unknown policies behave like PolicySize.
func NewSelector(policy domain.LayoutPolicy, threshold int) Selector {
	if policy != domain.PolicyToggle {
		policy = domain.PolicySize
	}
	if threshold <= 0 {
		threshold = DefaultTallThreshold
	}
	return Selector{policy: policy, threshold: threshold}
}

// Policy returns the active policy.
func (s Selector) Policy() domain.LayoutPolicy {
	return s.policy
}

// Select chooses the layout for an instance.
func (s Selector) Select(snap domain.PlayerSnapshot, inst domain.WidgetInstance) domain.Layout {
	switch s.policy {
	case domain.PolicyToggle:
		if snap.ShowShuffleControl || snap.ShowRepeatControl {
			return domain.LayoutExpanded
		}
	default:
		if inst.MinHeight >= s.threshold {
			return domain.LayoutExpanded
		}
	}
	return domain.LayoutCompact
}
