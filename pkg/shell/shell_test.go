package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krillsh/krill/pkg/eval"
	"github.com/krillsh/krill/pkg/store"
	"github.com/krillsh/krill/pkg/vals"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	sh := New(DefaultConfig())
	var out, errOut bytes.Buffer
	sh.stdout = &out
	sh.stderr = &errOut
	return sh, &out, &errOut
}

func run(t *testing.T, sh *Shell, code string) {
	t.Helper()
	require.NoError(t, sh.RunCode(context.Background(), "test", code))
}

func TestRunCode_PrintsScalar(t *testing.T) {
	sh, out, _ := newTestShell(t)
	run(t, sh, "1 + 2")
	assert.Equal(t, "3\n", out.String())
}

func TestRunCode_PrintsListAsColumns(t *testing.T) {
	sh, out, _ := newTestShell(t)
	run(t, sh, "['read', 'write']")
	assert.Equal(t, "0  read\n1  write\n", out.String())
}

func TestRunCode_NullPrintsNothing(t *testing.T) {
	sh, out, _ := newTestShell(t)
	run(t, sh, "let x")
	assert.Equal(t, "", out.String())
}

func TestRunCode_ParseErrorReported(t *testing.T) {
	sh, out, errOut := newTestShell(t)
	require.NoError(t, sh.RunCode(context.Background(), "test", "if {"))
	assert.Empty(t, out.String())
	assert.NotEmpty(t, errOut.String())
}

func TestRunCode_RuntimeErrorReported(t *testing.T) {
	sh, _, errOut := newTestShell(t)
	require.NoError(t, sh.RunCode(context.Background(), "test", "1 / 0"))
	assert.NotEmpty(t, errOut.String())
}

func TestRunCode_ExitPropagates(t *testing.T) {
	sh, _, _ := newTestShell(t)
	err := sh.RunCode(context.Background(), "test", "exit 3")
	var exit *eval.ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 3, exit.Status)
}

func TestRunCommand_Statuses(t *testing.T) {
	sh, _, _ := newTestShell(t)
	assert.Equal(t, 0, sh.RunCommand(context.Background(), "1 + 1"))
	assert.Equal(t, 2, sh.RunCommand(context.Background(), "while"))
	assert.Equal(t, 1, sh.RunCommand(context.Background(), "1 / 0"))
	assert.Equal(t, 7, sh.RunCommand(context.Background(), "exit 7"))
}

func TestRunScript(t *testing.T) {
	sh, out, _ := newTestShell(t)
	path := filepath.Join(t.TempDir(), "answer.krill")
	require.NoError(t, os.WriteFile(path, []byte("$x = 40\n$x + 2\n"), 0o644))
	assert.Equal(t, 0, sh.RunScript(context.Background(), path))
	assert.Equal(t, "42\n", out.String())
}

func TestEchoBuiltin(t *testing.T) {
	sh, out, _ := newTestShell(t)
	run(t, sh, "echo hello world")
	assert.Equal(t, "hello world\n", out.String())
}

func TestLenBuiltin(t *testing.T) {
	sh, out, _ := newTestShell(t)
	run(t, sh, "len 'héllo'")
	assert.Equal(t, "5\n", out.String())
}

func TestCdAndPwd(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(wd) })

	dir := t.TempDir()
	sh, out, _ := newTestShell(t)
	run(t, sh, "cd '"+dir+"'")
	run(t, sh, "pwd")

	got, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, got+"\n", out.String())
}

func TestAliasLifecycle(t *testing.T) {
	sh, out, errOut := newTestShell(t)
	run(t, sh, "alias hi 'echo hello'")
	run(t, sh, "hi")
	assert.Equal(t, "hello\n", out.String())

	out.Reset()
	run(t, sh, "alias hi")
	assert.Equal(t, "echo hello\n", out.String())

	run(t, sh, "unalias hi")
	assert.Empty(t, errOut.String())
	run(t, sh, "unalias hi")
	assert.Contains(t, errOut.String(), "no alias")
}

func TestLines(t *testing.T) {
	v, err := linesFn(nil, []vals.Value{"a\nb\nc\n"})
	require.NoError(t, err)
	assert.True(t, vals.EqualStrict(vals.NewList("a", "b", "c"), v))

	v, err = linesFn(nil, []vals.Value{""})
	require.NoError(t, err)
	assert.True(t, vals.EqualStrict(vals.NewList(), v))
}

func TestUnique(t *testing.T) {
	src := vals.NewList(int64(1), int64(2), int64(1), "a", int64(3), "a")
	v, err := uniqueFn(nil, []vals.Value{src})
	require.NoError(t, err)
	assert.True(t, vals.EqualStrict(vals.NewList(int64(1), int64(2), "a", int64(3)), v))
}

func TestFirstLast(t *testing.T) {
	src := vals.NewList("a", "b", "c")
	v, err := firstFn(nil, []vals.Value{src})
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = lastFn(nil, []vals.Value{src})
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	_, err = firstFn(nil, []vals.Value{vals.NewList()})
	assert.Error(t, err)
}

func TestAssert(t *testing.T) {
	_, err := assertFn(nil, []vals.Value{true})
	assert.NoError(t, err)

	_, err = assertFn(nil, []vals.Value{false, "broken invariant"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken invariant")
}

func TestMapFilterBuiltins(t *testing.T) {
	sh, out, _ := newTestShell(t)
	run(t, sh, "$double = {|x| return $x * 2 }\nmap $double [1, 2, 3]")
	assert.Equal(t, "0  2\n1  4\n2  6\n", out.String())

	out.Reset()
	run(t, sh, "$big = {|x| return $x > 1 }\nfilter $big [1, 2, 3]")
	assert.Equal(t, "0  2\n1  3\n", out.String())
}

func TestFilterByPattern(t *testing.T) {
	sh, out, _ := newTestShell(t)
	run(t, sh, "filter ar ['bar', 'foo', 'car']")
	assert.Equal(t, "0  bar\n1  car\n", out.String())

	out.Reset()
	run(t, sh, "filter @'o+' ['bar', 'foo', 'goo']")
	assert.Equal(t, "0  foo\n1  goo\n", out.String())
}

func TestHistoryBuiltin(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sh, out, _ := newTestShell(t)
	sh.SetStore(st)
	_, err = st.AddCmd("echo   one")
	require.NoError(t, err)
	_, err = st.AddCmd("echo two")
	require.NoError(t, err)

	v, err := sh.historyFn(nil, nil)
	require.NoError(t, err)
	table, ok := v.(*vals.Table)
	require.True(t, ok)
	assert.Equal(t, 2, table.Len())
	cmds, err := table.Column("cmd")
	require.NoError(t, err)
	// Re-serialized in canonical spacing.
	assert.True(t, vals.EqualStrict(vals.NewList("echo one", "echo two"), cmds))

	v, err = sh.historyFn(nil, []vals.Value{int64(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, v.(*vals.Table).Len())

	out.Reset()
	run(t, sh, "history")
	assert.Contains(t, out.String(), "seq")
	assert.Contains(t, out.String(), "echo two")
}

func TestImportBuiltin(t *testing.T) {
	sh, out, _ := newTestShell(t)
	path := filepath.Join(t.TempDir(), "lib.krill")
	require.NoError(t, os.WriteFile(path, []byte("fn answer() { return 42 }\n"), 0o644))
	run(t, sh, "import '"+path+"'\nanswer")
	assert.Equal(t, "42\n", out.String())
}

func TestPrompt(t *testing.T) {
	sh, _, _ := newTestShell(t)
	sh.cfg.Prompt = "krill> "
	assert.Equal(t, "krill> ", sh.prompt())

	wd, err := os.Getwd()
	require.NoError(t, err)
	sh.cfg.Prompt = "%w> "
	sh.ev.Home = wd
	assert.Equal(t, "~> ", sh.prompt())
}
