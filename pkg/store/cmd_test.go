package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var history = []string{
	"echo hello",
	"cd /tmp",
	"echo world",
	"ls -l",
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "krill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func populate(t *testing.T, s *Store) {
	t.Helper()
	for i, text := range history {
		seq, err := s.AddCmd(text)
		require.NoError(t, err)
		require.Equal(t, i+1, seq)
	}
}

func TestAddCmd(t *testing.T) {
	s := testStore(t)

	seq, err := s.NextCmdSeq()
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	populate(t, s)

	seq, err = s.NextCmdSeq()
	require.NoError(t, err)
	assert.Equal(t, len(history)+1, seq)

	text, err := s.Cmd(2)
	require.NoError(t, err)
	assert.Equal(t, "cd /tmp", text)
}

func TestCmd_Missing(t *testing.T) {
	s := testStore(t)
	_, err := s.Cmd(99)
	assert.ErrorIs(t, err, ErrNoMatchingCmd)
}

func TestDelCmd(t *testing.T) {
	s := testStore(t)
	populate(t, s)

	require.NoError(t, s.DelCmd(2))
	_, err := s.Cmd(2)
	assert.ErrorIs(t, err, ErrNoMatchingCmd)

	// Sequence numbers are not reused after deletion.
	seq, err := s.AddCmd("new entry")
	require.NoError(t, err)
	assert.Equal(t, len(history)+1, seq)
}

func TestCmdsWithSeq(t *testing.T) {
	s := testStore(t)
	populate(t, s)

	cmds, err := s.CmdsWithSeq(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []Cmd{
		{Text: "cd /tmp", Seq: 2},
		{Text: "echo world", Seq: 3},
	}, cmds)

	cmds, err = s.CmdsWithSeq(10, 20)
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestNextCmd(t *testing.T) {
	s := testStore(t)
	populate(t, s)

	cmd, err := s.NextCmd(1, "echo")
	require.NoError(t, err)
	assert.Equal(t, Cmd{Text: "echo hello", Seq: 1}, cmd)

	cmd, err = s.NextCmd(2, "echo")
	require.NoError(t, err)
	assert.Equal(t, Cmd{Text: "echo world", Seq: 3}, cmd)

	_, err = s.NextCmd(4, "echo")
	assert.ErrorIs(t, err, ErrNoMatchingCmd)
}

func TestPrevCmd(t *testing.T) {
	s := testStore(t)
	populate(t, s)

	// From past the end, scanning backwards.
	cmd, err := s.PrevCmd(100, "echo")
	require.NoError(t, err)
	assert.Equal(t, Cmd{Text: "echo world", Seq: 3}, cmd)

	cmd, err = s.PrevCmd(3, "echo")
	require.NoError(t, err)
	assert.Equal(t, Cmd{Text: "echo hello", Seq: 1}, cmd)

	_, err = s.PrevCmd(1, "echo")
	assert.ErrorIs(t, err, ErrNoMatchingCmd)
}
