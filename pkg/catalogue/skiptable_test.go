package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

func TestBuildSkipTableBasic(t *testing.T) {
	rules, err := Parse([]byte(`[{"tests": "001-HelloWorld", "variant": "gcstress"}]`))
	require.NoError(t, err)

	table, err := BuildSkipTable(rules, BuildOptions{
		KnownTests: map[string]bool{"001-HelloWorld": true, "002-Sleep": true},
	})
	require.NoError(t, err)
	assert.Len(t, table["001-HelloWorld"], 1)
	assert.Empty(t, table["002-Sleep"])
}

func TestBuildSkipTableUnknownTestIsFatalUnlessShard(t *testing.T) {
	rules, err := Parse([]byte(`[{"tests": "999-Missing", "variant": ""}]`))
	require.NoError(t, err)

	_, err = BuildSkipTable(rules, BuildOptions{KnownTests: map[string]bool{"001-HelloWorld": true}})
	require.Error(t, err)
	var unknown *UnknownTestError
	assert.ErrorAs(t, err, &unknown)

	table, err := BuildSkipTable(rules, BuildOptions{
		KnownTests:             map[string]bool{"001-HelloWorld": true},
		RunningUnderBuildShard: true,
	})
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestBuildSkipTableDeviceGating(t *testing.T) {
	rules, err := Parse([]byte(`[{"tests": "001-HelloWorld", "variant": "", "devices": ["sailfish"]}]`))
	require.NoError(t, err)
	known := map[string]bool{"001-HelloWorld": true}

	table, err := BuildSkipTable(rules, BuildOptions{KnownTests: known, Device: "marlin"})
	require.NoError(t, err)
	assert.Empty(t, table["001-HelloWorld"])

	table, err = BuildSkipTable(rules, BuildOptions{KnownTests: known, Device: "sailfish"})
	require.NoError(t, err)
	// An empty variant expands to one single-tag clause per tag.
	require.Len(t, table["001-HelloWorld"], len(variant.AllTags()))
	// Device-scoped rules are implicitly scoped to target combinations.
	o := Oracle{Table: table}
	assert.True(t, o.IsDisabled("001-HelloWorld", variant.Combination{Target: variant.TagTargetTarget}))
	assert.False(t, o.IsDisabled("001-HelloWorld", variant.Combination{Target: variant.TagTargetHost}))
}

func TestBuildSkipTableEnvVarsGating(t *testing.T) {
	rules, err := Parse([]byte(`[{"tests": "001-HelloWorld", "variant": "", "env_vars": {"ART_TEST_ON_FVP": "true"}}]`))
	require.NoError(t, err)
	known := map[string]bool{"001-HelloWorld": true}

	table, err := BuildSkipTable(rules, BuildOptions{KnownTests: known, Env: map[string]string{}})
	require.NoError(t, err)
	assert.Empty(t, table["001-HelloWorld"])

	table, err = BuildSkipTable(rules, BuildOptions{KnownTests: known, Env: map[string]string{"ART_TEST_ON_FVP": "true"}})
	require.NoError(t, err)
	assert.Len(t, table["001-HelloWorld"], len(variant.AllTags()))
}

func TestBuildSkipTableTestPatternMatching(t *testing.T) {
	rules, err := Parse([]byte(`[{"test_patterns": "^00[1-3]-.*", "variant": "gcstress"}]`))
	require.NoError(t, err)
	known := map[string]bool{"001-HelloWorld": true, "002-Sleep": true, "010-Other": true}

	table, err := BuildSkipTable(rules, BuildOptions{KnownTests: known})
	require.NoError(t, err)
	assert.Len(t, table["001-HelloWorld"], 1)
	assert.Len(t, table["002-Sleep"], 1)
	assert.Empty(t, table["010-Other"])
}
