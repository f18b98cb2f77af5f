package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/dargueta/diskalloc"
	"github.com/hashicorp/go-multierror"
)

// Outcome is the result of replaying one command.
type Outcome struct {
	Command Command
	// FileID is the ID the command's file index translated to.
	FileID diskalloc.FileID
	Status diskalloc.Status
	// Block is the block returned by an access. It's 0 for other operations
	// and for failed accesses.
	Block   diskalloc.BlockIndex
	Err     error
	Elapsed time.Duration
}

// Replayer feeds commands to a single engine. It remembers how many files have
// been created so far, so the same Replayer must be used for every command of a
// workload.
type Replayer struct {
	Engine diskalloc.Engine
	// Strategy names the engine in metrics.
	Strategy string
	// Metrics is optional.
	Metrics *Metrics
	// StopOnFail makes Run stop at the first command that fails. Rejected
	// commands never stop a replay.
	StopOnFail bool
	// Observe, if set, is called after every command with the zero-based step
	// number and its outcome, before the next command runs.
	Observe func(step int, outcome Outcome)

	filesCreated uint32
}

func NewReplayer(engine diskalloc.Engine, strategy string) *Replayer {
	return &Replayer{Engine: engine, Strategy: strategy}
}

// Step replays a single command.
func (r *Replayer) Step(command Command) Outcome {
	outcome := Outcome{Command: command}
	started := time.Now()

	switch command.Op {
	case diskalloc.OpCreate:
		outcome.FileID = diskalloc.FileID(r.filesCreated)
		r.filesCreated++
		outcome.Err = r.Engine.CreateFile(outcome.FileID, command.Argument)
	case diskalloc.OpAccess:
		outcome.FileID = diskalloc.FileID(command.FileIndex)
		outcome.Block, outcome.Err = r.Engine.Access(outcome.FileID, command.Argument)
	case diskalloc.OpExtend:
		outcome.FileID = diskalloc.FileID(command.FileIndex)
		outcome.Err = r.Engine.Extend(outcome.FileID, command.Argument)
	case diskalloc.OpShrink:
		outcome.FileID = diskalloc.FileID(command.FileIndex)
		outcome.Err = r.Engine.Shrink(outcome.FileID, command.Argument)
	}

	outcome.Elapsed = time.Since(started)
	outcome.Status = diskalloc.StatusOf(outcome.Err)
	if r.Metrics != nil {
		r.Metrics.observe(r.Strategy, command.Op, outcome.Status, outcome.Elapsed)
	}
	return outcome
}

// Run replays `commands` in order and returns the outcome of each one it ran.
// The error combines every failed command, or is the first failure if
// StopOnFail is set. If the context is canceled, Run stops and returns the
// context's error.
func (r *Replayer) Run(ctx context.Context, commands []Command) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(commands))
	var failures *multierror.Error

	for step, command := range commands {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome := r.Step(command)
		outcomes = append(outcomes, outcome)
		if r.Observe != nil {
			r.Observe(step, outcome)
		}

		if outcome.Status != diskalloc.Fail {
			continue
		}
		err := fmt.Errorf("line %d: %s: %w", command.Line, command, outcome.Err)
		if r.StopOnFail {
			return outcomes, err
		}
		failures = multierror.Append(failures, err)
	}
	return outcomes, failures.ErrorOrNil()
}
