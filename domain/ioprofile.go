package domain

// SideEffectKind classifies a mutation that escapes the function's local
// scope.
type SideEffectKind string

const (
	SideEffectFieldMutation      SideEffectKind = "field_mutation"
	SideEffectGlobalMutation     SideEffectKind = "global_mutation"
	SideEffectCollectionMutation SideEffectKind = "collection_mutation"
	SideEffectExternalState      SideEffectKind = "external_state"
)

// SideEffect is one detected occurrence of a SideEffectKind.
type SideEffect struct {
	Kind     SideEffectKind
	Location Location
	Target   string // field/variable/collection name, when known
}

// IoResponsibility is the primary I/O responsibility of a function, derived
// by priority per §3: File > Network > Console > DB > Mixed > PureComputation.
type IoResponsibility string

const (
	IoResponsibilityFile        IoResponsibility = "file"
	IoResponsibilityNetwork     IoResponsibility = "network"
	IoResponsibilityConsole     IoResponsibility = "console"
	IoResponsibilityDatabase    IoResponsibility = "database"
	IoResponsibilityMixed       IoResponsibility = "mixed"
	IoResponsibilityPure        IoResponsibility = "pure_computation"
)

// IoProfile is the per-function I/O and side-effect summary produced by the
// I/O & Side-Effect Detector (§4.7) and propagated through the call graph.
type IoProfile struct {
	FileOps    int
	NetworkOps int
	ConsoleOps int
	DBOps      int
	EnvOps     int

	SideEffects []SideEffect
}

// IsPure reports whether the profile has no I/O and no side effects.
func (p IoProfile) IsPure() bool {
	return p.FileOps == 0 && p.NetworkOps == 0 && p.ConsoleOps == 0 &&
		p.DBOps == 0 && p.EnvOps == 0 && len(p.SideEffects) == 0
}

// TotalIoOps sums the I/O-only counters (excludes side effects, which are
// not I/O operations).
func (p IoProfile) TotalIoOps() int {
	return p.FileOps + p.NetworkOps + p.ConsoleOps + p.DBOps + p.EnvOps
}

// PrimaryResponsibility classifies the profile by the priority rule in §3.
func (p IoProfile) PrimaryResponsibility() IoResponsibility {
	kinds := 0
	if p.FileOps > 0 {
		kinds++
	}
	if p.NetworkOps > 0 {
		kinds++
	}
	if p.ConsoleOps > 0 {
		kinds++
	}
	if p.DBOps > 0 {
		kinds++
	}
	if kinds >= 2 {
		return IoResponsibilityMixed
	}
	switch {
	case p.FileOps > 0:
		return IoResponsibilityFile
	case p.NetworkOps > 0:
		return IoResponsibilityNetwork
	case p.ConsoleOps > 0:
		return IoResponsibilityConsole
	case p.DBOps > 0:
		return IoResponsibilityDatabase
	default:
		return IoResponsibilityPure
	}
}

// Union merges two profiles, used during the call-graph I/O propagation
// fixed point (§4.7: "effective IoProfile = union of its direct profile and
// its callees' profiles").
func (p IoProfile) Union(other IoProfile) IoProfile {
	merged := IoProfile{
		FileOps:    maxInt(p.FileOps, other.FileOps),
		NetworkOps: maxInt(p.NetworkOps, other.NetworkOps),
		ConsoleOps: maxInt(p.ConsoleOps, other.ConsoleOps),
		DBOps:      maxInt(p.DBOps, other.DBOps),
		EnvOps:     maxInt(p.EnvOps, other.EnvOps),
	}
	merged.SideEffects = append(append([]SideEffect{}, p.SideEffects...), other.SideEffects...)
	return merged
}

// Equal reports whether two profiles carry identical counters and side
// effect counts, used by the propagation fixed-point loop to detect
// convergence.
func (p IoProfile) Equal(other IoProfile) bool {
	return p.FileOps == other.FileOps && p.NetworkOps == other.NetworkOps &&
		p.ConsoleOps == other.ConsoleOps && p.DBOps == other.DBOps &&
		p.EnvOps == other.EnvOps && len(p.SideEffects) == len(other.SideEffects)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
