package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Tree(t *testing.T) {
	root := NewRootCommand()

	for _, path := range [][]string{
		{"start"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"seed"},
		{"optimize"},
		{"worker", "run"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.NotNil(t, cmd.RunE, path)
	}
}

func TestOptimizeCommand_Flags(t *testing.T) {
	cmd := newOptimizeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--order-id", "3", "--order-id", "7,9", "--dry-run", "--limit", "25"}))

	ids, err := cmd.Flags().GetInt64Slice("order-id")
	require.NoError(t, err)
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	limit, _ := cmd.Flags().GetInt("limit")

	assert.Equal(t, []int64{3, 7, 9}, ids)
	assert.True(t, dryRun)
	assert.Equal(t, 25, limit)
	assert.Contains(t, cmd.Flags().Lookup("limit").Usage, "0 for no limit")
}
