package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/contiguous"
	"github.com/dargueta/diskalloc/linked"
	"github.com/dargueta/diskalloc/replay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
)

func arenaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.UintFlag{
			Name:  "blocks",
			Value: 32768,
			Usage: "number of blocks on the simulated disk",
		},
		&cli.StringFlag{
			Name:  "block-size",
			Value: "8B",
			Usage: "size of a block, e.g. 8B or 4KB",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log failed operations and compactions to stderr",
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "print operation metrics after the workload",
		},
	}
}

func loadConfig(ctx *cli.Context) (diskalloc.Config, error) {
	blockSize, err := datasize.ParseString(ctx.String("block-size"))
	if err != nil {
		return diskalloc.Config{}, fmt.Errorf("bad block size %q: %w", ctx.String("block-size"), err)
	}
	if blockSize.Bytes() > math.MaxUint32 {
		return diskalloc.Config{}, fmt.Errorf("block size %s is too large", blockSize.HR())
	}

	blocks := ctx.Uint("blocks")
	if uint64(blocks) > math.MaxUint32 {
		return diskalloc.Config{}, fmt.Errorf("too many blocks: %d", blocks)
	}

	config := diskalloc.Config{
		TotalBlocks:   uint32(blocks),
		BytesPerBlock: uint32(blockSize.Bytes()),
	}
	if ctx.Bool("verbose") {
		config.Diagnostics = diskalloc.LogDiagnostics{
			Logger: log.New(ctx.App.ErrWriter, "diskalloc: ", 0),
		}
	}
	return config, config.Validate()
}

func loadCommands(ctx *cli.Context) ([]replay.Command, error) {
	if ctx.NArg() != 1 {
		return nil, cli.Exit("expected exactly one workload file, or - for stdin", 2)
	}

	path := ctx.Args().First()
	if path == "-" {
		return replay.Parse(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	commands, err := replay.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return commands, nil
}

func newEngine(strategy string, config diskalloc.Config, singleCompaction bool) (diskalloc.Engine, error) {
	switch strategy {
	case "contiguous":
		engine, err := contiguous.New(config)
		if err != nil {
			return nil, err
		}
		if singleCompaction {
			engine.SetExtendPolicy(contiguous.SingleCompactionExtend)
		}
		return engine, nil
	case "linked":
		return linked.New(config)
	default:
		return nil, cli.Exit(fmt.Sprintf("unknown strategy %q", strategy), 2)
	}
}

// newMetrics returns nil metrics if they weren't asked for.
func newMetrics(ctx *cli.Context) (*prometheus.Registry, *replay.Metrics, error) {
	if !ctx.Bool("metrics") {
		return nil, nil, nil
	}
	registry := prometheus.NewRegistry()
	metrics, err := replay.NewMetrics(registry)
	return registry, metrics, err
}

func writeMetrics(writer io.Writer, registry *prometheus.Registry) error {
	if registry == nil {
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(writer, family); err != nil {
			return err
		}
	}
	return nil
}

// parseSlice parses a block range written as START:END.
func parseSlice(text string) (diskalloc.BlockIndex, diskalloc.BlockIndex, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad slice %q: expected START:END", text)
	}

	start, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad slice start %q: %w", parts[0], err)
	}
	end, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad slice end %q: %w", parts[1], err)
	}
	return diskalloc.BlockIndex(start), diskalloc.BlockIndex(end), nil
}

func replayWorkload(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	commands, err := loadCommands(ctx)
	if err != nil {
		return err
	}

	strategy := ctx.String("strategy")
	engine, err := newEngine(strategy, config, ctx.Bool("single-compaction"))
	if err != nil {
		return err
	}
	registry, metrics, err := newMetrics(ctx)
	if err != nil {
		return err
	}

	replayer := replay.NewReplayer(engine, strategy)
	replayer.Metrics = metrics
	replayer.StopOnFail = ctx.Bool("stop-on-fail")

	output := ctx.App.Writer
	outcomes, replayErr := replayer.Run(context.Background(), commands)

	if ctx.Bool("outcomes") {
		if err := replay.WriteOutcomes(output, outcomes); err != nil {
			return err
		}
	}
	if ctx.Bool("dump-table") {
		if err := replay.WriteTable(output, engine.Table()); err != nil {
			return err
		}
	}
	if ctx.IsSet("slice") {
		start, end, err := parseSlice(ctx.String("slice"))
		if err != nil {
			return err
		}
		if err := replay.WriteSlice(output, start, engine.Slice(start, end)); err != nil {
			return err
		}
	}
	if err := writeMetrics(output, registry); err != nil {
		return err
	}

	counts := map[diskalloc.Status]int{}
	for _, outcome := range outcomes {
		counts[outcome.Status]++
	}
	fmt.Fprintf(
		ctx.App.ErrWriter,
		"%d commands: %d succeeded, %d rejected, %d failed; %d of %d blocks free\n",
		len(outcomes),
		counts[diskalloc.Success],
		counts[diskalloc.Reject],
		counts[diskalloc.Fail],
		engine.AvailableSpace(),
		engine.TotalBlocks())

	if replayErr != nil {
		return cli.Exit(replayErr.Error(), 1)
	}
	return nil
}

func compareWorkload(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	commands, err := loadCommands(ctx)
	if err != nil {
		return err
	}
	registry, metrics, err := newMetrics(ctx)
	if err != nil {
		return err
	}

	report, err := replay.Compare(context.Background(), config, commands, metrics)
	if err != nil {
		return err
	}

	output := ctx.App.Writer
	showLayout := ctx.Bool("show-layout")
	layoutOnly := 0
	for _, divergence := range report.Divergences {
		if divergence.Kind == replay.LayoutMismatch {
			layoutOnly++
			if !showLayout {
				continue
			}
		}
		fmt.Fprintln(output, divergence)
	}
	if err := writeMetrics(output, registry); err != nil {
		return err
	}

	fmt.Fprintf(
		ctx.App.ErrWriter,
		"%d steps, %d divergences (%d layout only)\n",
		report.Steps,
		len(report.Divergences),
		layoutOnly)

	if !report.Equivalent() {
		return cli.Exit("the strategies disagree", 1)
	}
	return nil
}
