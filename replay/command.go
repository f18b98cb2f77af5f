package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/errors"
)

// Command is one parsed line of a workload.
type Command struct {
	Op diskalloc.Operation
	// Line is the 1-based line number the command came from, or 0 if it wasn't
	// parsed from a script.
	Line int
	// FileIndex is the creation-order index of the target file. It's unused
	// for create commands, and never exceeds math.MaxInt32 so that it fits in
	// a FileID.
	FileIndex uint32
	// Argument is the byte length for create, the byte offset for access, and
	// the number of blocks for extend and shrink.
	Argument uint32
}

var opPrefixes = map[diskalloc.Operation]string{
	diskalloc.OpCreate: "c",
	diskalloc.OpAccess: "a",
	diskalloc.OpExtend: "e",
	diskalloc.OpShrink: "sh",
}

func (c Command) String() string {
	if c.Op == diskalloc.OpCreate {
		return fmt.Sprintf("c:%d", c.Argument)
	}
	return fmt.Sprintf("%s:%d:%d", opPrefixes[c.Op], c.FileIndex, c.Argument)
}

// parseNumber parses an unsigned decimal field no wider than `bitSize` bits.
func parseNumber(field, name string, bitSize int) (uint32, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(field), 10, bitSize)
	if err != nil {
		return 0, errors.ErrInvalidArgument.WithMessage(fmt.Sprintf("bad %s %q", name, field)).Wrap(err)
	}
	return uint32(value), nil
}

// ParseCommand parses a single command. The result's Line is 0.
func ParseCommand(text string) (Command, error) {
	fields := strings.Split(strings.TrimSpace(text), ":")
	prefix := strings.ToLower(strings.TrimSpace(fields[0]))

	var op diskalloc.Operation
	switch prefix {
	case "c":
		if len(fields) != 2 {
			return Command{}, errors.ErrInvalidArgument.WithMessage(
				fmt.Sprintf("%q: expected c:<byteLength>", text))
		}
		length, err := parseNumber(fields[1], "byte length", 32)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: diskalloc.OpCreate, Argument: length}, nil
	case "a":
		op = diskalloc.OpAccess
	case "e":
		op = diskalloc.OpExtend
	case "sh":
		op = diskalloc.OpShrink
	default:
		return Command{}, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q: unknown command %q", text, prefix))
	}

	if len(fields) != 3 {
		return Command{}, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q: expected %s:<fileIndex>:<number>", text, prefix))
	}

	fileIndex, err := parseNumber(fields[1], "file index", 31)
	if err != nil {
		return Command{}, err
	}
	argument, err := parseNumber(fields[2], "argument", 32)
	if err != nil {
		return Command{}, err
	}
	return Command{Op: op, FileIndex: fileIndex, Argument: argument}, nil
}

// Parse reads a whole workload script.
func Parse(reader io.Reader) ([]Command, error) {
	commands := []Command{}
	scanner := bufio.NewScanner(reader)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		command, err := ParseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		command.Line = lineNumber
		commands = append(commands, command)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewFromError(errors.EINVAL, err)
	}
	return commands, nil
}
