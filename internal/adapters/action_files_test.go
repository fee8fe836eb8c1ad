package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionFilesExpandDir(t *testing.T) {
	root := t.TempDir()
	actionDir := filepath.Join(root, "action")
	msgDir := filepath.Join(root, "msg")
	require.NoError(t, os.MkdirAll(actionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(actionDir, "Fib.action"), []byte("int32 order\n---\nint32[] sequence\n---\nint32[] partial\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(actionDir, "README"), []byte("ignored"), 0o644))

	written, err := NewActionFilesAdapter().ExpandDir(actionDir, msgDir)
	require.NoError(t, err)
	require.Len(t, written, 7)

	goal, err := os.ReadFile(filepath.Join(msgDir, "FibGoal.msg"))
	require.NoError(t, err)
	assert.Equal(t, "int32 order", string(goal))

	actionGoal, err := os.ReadFile(filepath.Join(msgDir, "FibActionGoal.msg"))
	require.NoError(t, err)
	assert.Equal(t, "Header header\nactionlib_msgs/GoalID goal_id\nFibGoal goal\n", string(actionGoal))

	for _, name := range []string{"FibResult", "FibFeedback", "FibAction", "FibActionResult", "FibActionFeedback"} {
		assert.FileExists(t, filepath.Join(msgDir, name+".msg"))
	}
}

func TestActionFilesMissingDir(t *testing.T) {
	root := t.TempDir()
	written, err := NewActionFilesAdapter().ExpandDir(filepath.Join(root, "action"), filepath.Join(root, "msg"))
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.NoDirExists(t, filepath.Join(root, "msg"))
}

func TestActionFilesRejectsMalformedAction(t *testing.T) {
	root := t.TempDir()
	actionDir := filepath.Join(root, "action")
	require.NoError(t, os.MkdirAll(actionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(actionDir, "Bad.action"), []byte("int32 order\n---\nint32 result\n"), 0o644))

	_, err := NewActionFilesAdapter().ExpandDir(actionDir, filepath.Join(root, "msg"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
