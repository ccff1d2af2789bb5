package domain

// MappingStatusFilter is the tri-state mapping selector
type MappingStatusFilter string

const (
	StatusAll      MappingStatusFilter = "all"
	StatusMapped   MappingStatusFilter = "mapped"
	StatusUnmapped MappingStatusFilter = "unmapped"
)

// GroupPresence restricts rows by whether they belong to a real holding
type GroupPresence string

const (
	GroupPresenceAny     GroupPresence = "any"
	GroupPresenceWith    GroupPresence = "with_group"
	GroupPresenceWithout GroupPresence = "without_group"
)

// NewGroupPresence folds the two "with group"/"without group" checkboxes into
// a single state: exactly one checked restricts, both or none do not.
func NewGroupPresence(with, without bool) GroupPresence {
	switch {
	case with && !without:
		return GroupPresenceWith
	case without && !with:
		return GroupPresenceWithout
	default:
		return GroupPresenceAny
	}
}

// SizeBand is a royalty quartile bucket
type SizeBand string

const (
	SizeSmall      SizeBand = "small"
	SizeMediumLow  SizeBand = "medium_low"
	SizeMediumHigh SizeBand = "medium_high"
	SizeLarge      SizeBand = "large"
)

// SizeBands lists the buckets in ascending order
var SizeBands = []SizeBand{SizeSmall, SizeMediumLow, SizeMediumHigh, SizeLarge}

// Range is a closed numeric interval
type Range struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// Contains reports whether v lies in [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterSelection is the full set of filter choices. Every multi-valued
// dimension treats an empty slice as "no restriction".
type FilterSelection struct {
	States        []string            `json:"states,omitempty"`
	Tiers         []string            `json:"tiers,omitempty"`
	Groups        []string            `json:"groups,omitempty"`
	Substances    []string            `json:"substances,omitempty"`
	Outsourcing   []string            `json:"outsourcing,omitempty"`
	Status        MappingStatusFilter `json:"status,omitempty" validate:"omitempty,oneof=all mapped unmapped"`
	Royalty       *Range              `json:"royalty,omitempty"`
	GroupPresence GroupPresence       `json:"group_presence,omitempty" validate:"omitempty,oneof=any with_group without_group"`
	SizeBands     []SizeBand          `json:"size_bands,omitempty" validate:"omitempty,dive,oneof=small medium_low medium_high large"`
}

// Active reports whether any dimension restricts the base set
func (s FilterSelection) Active() bool {
	return len(s.States) > 0 ||
		len(s.Tiers) > 0 ||
		len(s.Groups) > 0 ||
		len(s.Substances) > 0 ||
		len(s.Outsourcing) > 0 ||
		(s.Status != "" && s.Status != StatusAll) ||
		s.Royalty != nil ||
		(s.GroupPresence != "" && s.GroupPresence != GroupPresenceAny) ||
		len(s.SizeBands) > 0
}

// Quartiles are the royalty cut points behind the size bands
type Quartiles struct {
	Q25 float64 `json:"q25"`
	Q50 float64 `json:"q50"`
	Q75 float64 `json:"q75"`
}

// FilterSchema enumerates the options available for each dimension
type FilterSchema struct {
	States        []string              `json:"states"`
	Tiers         []string              `json:"tiers"`
	Groups        []string              `json:"groups"`
	Substances    []string              `json:"substances"`
	Outsourcing   []string              `json:"outsourcing"`
	Statuses      []MappingStatusFilter `json:"statuses"`
	Royalty       *Range                `json:"royalty,omitempty"`
	GroupPresence []GroupPresence       `json:"group_presence"`
	SizeBands     []SizeBand            `json:"size_bands"`
	Quartiles     *Quartiles            `json:"quartiles,omitempty"`
}

// FilteredView is the outcome of applying a selection to the base set
type FilteredView struct {
	Records       []Record `json:"records"`
	Total         int      `json:"total"`
	Matched       int      `json:"matched"`
	FiltersActive bool     `json:"filters_active"`
}
