package variant

// Selection holds the user-chosen subset of tags for each axis that will
// participate in expansion. An axis missing from the map falls back to
// its documented default subset (DefaultSelection), unless --all widened
// it to the full axis.
type Selection map[Axis][]Tag

// DefaultSelection returns the single-element (or, for target and
// compiler, the widened) default subset for every axis except
// address_sizes, which is derived per target from the environment probe
// rather than selected here.
func DefaultSelection() Selection {
	return Selection{
		AxisTarget:     {TagTargetHost, TagTargetTarget},
		AxisPrebuild:   {TagPrebuildYes},
		AxisJVMTI:      {TagJVMTINone},
		AxisCompiler: {
			TagCompilerOptimizing, TagCompilerJIT, TagCompilerInterpreter,
			TagCompilerInterpAC, TagCompilerSpeedProfile,
		},
		AxisRelocate:   {TagRelocateNo},
		AxisTrace:      {TagTraceNtrace},
		AxisGC:         {TagGCCMS},
		AxisJNI:        {TagJNICheck},
		AxisImage:      {TagImagePic},
		AxisDebuggable: {TagDebuggableNo},
		AxisRun:        {TagRunDebug},
	}
}

// Resolve merges user selections over the defaults: an axis explicitly
// chosen by the user replaces its default outright; an axis the user left
// untouched keeps its default. --all-<axis> is expressed by the caller
// passing that axis's full TagSet entry as the user selection.
func Resolve(user Selection) Selection {
	out := DefaultSelection()
	for axis, tags := range user {
		if len(tags) > 0 {
			out[axis] = tags
		}
	}
	return out
}

// WidenAll returns a Selection with every axis set to its full tag set,
// implementing a bare --all flag.
func WidenAll() Selection {
	out := make(Selection, len(AllAxes))
	for _, axis := range AllAxes {
		if axis == AxisAddressSize {
			continue
		}
		out[axis] = append([]Tag(nil), TagSet[axis]...)
	}
	return out
}

// ParseNonfunctionalSet parses a list of variant-expression strings (as
// authored in the orchestrator's own configuration, since this set is
// not part of the known-failure catalogue schema) into the Conjunctions
// that the skip oracle treats identically to per-test skip entries.
func ParseNonfunctionalSet(exprs []string) ([]Conjunction, error) {
	var out []Conjunction
	for _, s := range exprs {
		expr, err := ParseExpression(s)
		if err != nil {
			return nil, err
		}
		out = append(out, expr.Conjunctions()...)
	}
	return out, nil
}

// SplitTargets separates the jvm tag (segregated: it never combines with
// other axes and carries no address-size suffix) from the remaining
// targets that do combine and do carry an address size.
func SplitTargets(targets []Tag) (combining []Tag, jvm bool) {
	for _, t := range targets {
		if t == TagTargetJVM {
			jvm = true
			continue
		}
		combining = append(combining, t)
	}
	return combining, jvm
}
