package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMergesOverDefaults(t *testing.T) {
	user := Selection{AxisGC: {TagGCStress}}
	resolved := Resolve(user)

	assert.Equal(t, []Tag{TagGCStress}, resolved[AxisGC])
	assert.Equal(t, []Tag{TagPrebuildYes}, resolved[AxisPrebuild])
}

func TestWidenAllCoversEveryTag(t *testing.T) {
	sel := WidenAll()
	for axis, tags := range TagSet {
		if axis == AxisAddressSize {
			continue
		}
		assert.ElementsMatch(t, tags, sel[axis])
	}
	_, ok := sel[AxisAddressSize]
	assert.False(t, ok)
}

func TestSplitTargets(t *testing.T) {
	combining, jvm := SplitTargets([]Tag{TagTargetHost, TagTargetJVM, TagTargetTarget})
	assert.True(t, jvm)
	assert.ElementsMatch(t, []Tag{TagTargetHost, TagTargetTarget}, combining)

	combining2, jvm2 := SplitTargets([]Tag{TagTargetHost})
	assert.False(t, jvm2)
	assert.Equal(t, []Tag{TagTargetHost}, combining2)
}

func TestParseNonfunctionalSet(t *testing.T) {
	conjunctions, err := ParseNonfunctionalSet([]string{"jvmti-stress & gcstress", "no-image"})
	require.NoError(t, err)
	assert.Len(t, conjunctions, 2)
}
