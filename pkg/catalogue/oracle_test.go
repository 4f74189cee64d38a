package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

func TestOracleDryRunSkipsEverything(t *testing.T) {
	o := Oracle{DryRun: true}
	assert.True(t, o.IsDisabled("001-HelloWorld", variant.Combination{}))
}

func TestOracleForcedSkip(t *testing.T) {
	o := Oracle{ForcedSkip: map[string]bool{"001-HelloWorld": true}}
	assert.True(t, o.IsDisabled("001-HelloWorld", variant.Combination{}))
	assert.False(t, o.IsDisabled("002-Sleep", variant.Combination{}))
}

func TestOracleSkipTableSubset(t *testing.T) {
	expr, err := variant.ParseExpression("gcstress")
	require.NoError(t, err)
	o := Oracle{Table: SkipTable{"001-HelloWorld": expr.Conjunctions()}}

	assert.True(t, o.IsDisabled("001-HelloWorld", variant.Combination{GC: variant.TagGCStress}))
	assert.False(t, o.IsDisabled("001-HelloWorld", variant.Combination{GC: variant.TagGCCMS}))
}

func TestOracleIgnoreSkipsBypassesForcedAndTable(t *testing.T) {
	expr, err := variant.ParseExpression("gcstress")
	require.NoError(t, err)
	o := Oracle{
		Table:       SkipTable{"001-HelloWorld": expr.Conjunctions()},
		ForcedSkip:  map[string]bool{"001-HelloWorld": true},
		IgnoreSkips: true,
	}
	assert.False(t, o.IsDisabled("001-HelloWorld", variant.Combination{GC: variant.TagGCStress}))
}

func TestOracleNonfunctionalAppliesEvenWithIgnoreSkips(t *testing.T) {
	expr, err := variant.ParseExpression("no-image & debuggable")
	require.NoError(t, err)
	o := Oracle{
		IgnoreSkips:   true,
		Nonfunctional: expr.Conjunctions(),
	}
	assert.True(t, o.IsDisabled("001-HelloWorld", variant.Combination{Image: variant.TagImageNoImage, Debuggable: variant.TagDebuggableYes}))
	assert.False(t, o.IsDisabled("001-HelloWorld", variant.Combination{Image: variant.TagImagePic, Debuggable: variant.TagDebuggableYes}))
}
