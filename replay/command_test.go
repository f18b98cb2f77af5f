package replay_test

import (
	"strings"
	"testing"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/errors"
	"github.com/dargueta/diskalloc/replay"
	alloctest "github.com/dargueta/diskalloc/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commandTest struct {
	Text     string
	Expected replay.Command
}

var validCommands = [...]commandTest{
	{"c:32", replay.Command{Op: diskalloc.OpCreate, Argument: 32}},
	{"C:0", replay.Command{Op: diskalloc.OpCreate, Argument: 0}},
	{"a:0:30", replay.Command{Op: diskalloc.OpAccess, FileIndex: 0, Argument: 30}},
	{"e:3:2", replay.Command{Op: diskalloc.OpExtend, FileIndex: 3, Argument: 2}},
	{"sh:12:7", replay.Command{Op: diskalloc.OpShrink, FileIndex: 12, Argument: 7}},
	{"  sh: 1 : 2 ", replay.Command{Op: diskalloc.OpShrink, FileIndex: 1, Argument: 2}},
	{"a:2147483647:4294967295", replay.Command{Op: diskalloc.OpAccess, FileIndex: 2147483647, Argument: 4294967295}},
}

var invalidCommands = [...]string{
	"",
	"x:1",
	"c",
	"c:1:2",
	"c:-4",
	"c:4294967296",
	"a:1",
	"a:one:2",
	"e:1:2:3",
	"sh:1:",
	"a:2147483648:1",
	"e:4294967295:1",
}

func TestParseCommand__Valid(t *testing.T) {
	for _, test := range validCommands {
		command, err := replay.ParseCommand(test.Text)
		if assert.NoErrorf(t, err, "failed to parse %q", test.Text) {
			assert.Equalf(t, test.Expected, command, "wrong command for %q", test.Text)
		}
	}
}

func TestParseCommand__Invalid(t *testing.T) {
	for _, text := range invalidCommands {
		_, err := replay.ParseCommand(text)
		assert.ErrorIsf(t, err, errors.ErrInvalidArgument, "parsing %q should've failed", text)
	}
}

func TestCommandString(t *testing.T) {
	for _, text := range []string{"c:32", "a:0:30", "e:3:2", "sh:12:7"} {
		command, err := replay.ParseCommand(text)
		require.NoError(t, err)
		assert.Equal(t, text, command.String())
	}
}

func TestParse__SkipsBlankLinesAndComments(t *testing.T) {
	script := "# a comment\n\nc:32\n   \na:0:30\n  # indented comment\nsh:0:4\n"
	commands, err := replay.Parse(alloctest.LoadWorkload(t, script))
	require.NoError(t, err)

	assert.Equal(
		t,
		[]replay.Command{
			{Op: diskalloc.OpCreate, Line: 3, Argument: 32},
			{Op: diskalloc.OpAccess, Line: 5, FileIndex: 0, Argument: 30},
			{Op: diskalloc.OpShrink, Line: 7, FileIndex: 0, Argument: 4},
		},
		commands)
}

func TestParse__ReportsLineNumber(t *testing.T) {
	_, err := replay.Parse(strings.NewReader("c:32\nc:8\nq:1:2\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse__Empty(t *testing.T) {
	commands, err := replay.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, commands)
}
