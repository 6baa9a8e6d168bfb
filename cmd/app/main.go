package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/reformat"
	pkgconfig "github.com/jgrigorjeva/skoda-hackathon-2025/pkg/config"
)

// version is set at build time.
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// withPlanner opens the planner for a one-shot subcommand, logging to stderr
// so stdout carries only the JSON result.
func withPlanner(fn func(ctx context.Context, cmd *cli.Command, p *internal.Planner) (any, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		p, err := internal.Setup(ctx, append(opts, internal.WithLogOutput(os.Stderr)))
		if err != nil {
			return err
		}
		defer p.Close()

		out, err := fn(ctx, cmd, p)
		return emit(os.Stdout, out, err)
	}
}

// printedError fails a command after its output has been printed.
type printedError struct {
	out any
	err error
}

func (e *printedError) Error() string { return e.err.Error() }
func (e *printedError) Unwrap() error { return e.err }

// emit prints out as indented JSON unless err is set. A *printedError prints
// its output and is still returned.
func emit(w io.Writer, out any, err error) error {
	var pe *printedError
	if errors.As(err, &pe) {
		out = pe.out
	} else if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(out); encErr != nil {
		return encErr
	}
	return err
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func reformatStrategy(ctx context.Context, cmd *cli.Command, p *internal.Planner) (any, error) {
	var (
		raw []byte
		err error
	)
	if path := cmd.String("file"); path != "" && path != "-" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("read strategy text: %w", err)
	}
	return proposalOutcome(p.Service.ApplyStrategy(ctx, string(raw), cmd.Bool("apply")))
}

// proposalOutcome turns a rejected proposal into a failing exit after the
// proposal is printed.
func proposalOutcome(prop *reformat.Proposal, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if prop.State == reformat.StateRejected {
		return nil, &printedError{out: prop, err: fmt.Errorf("strategy proposal rejected: %s", prop.Reason)}
	}
	return prop, nil
}

func rank(ctx context.Context, cmd *cli.Command, p *internal.Planner) (any, error) {
	return p.Service.RankOverall(ctx, int(cmd.Int("top")))
}

func mapSkills(ctx context.Context, cmd *cli.Command, p *internal.Planner) (any, error) {
	return p.Service.GenerateMapping(ctx, cmd.Bool("save"))
}

func candidates(ctx context.Context, cmd *cli.Command, p *internal.Planner) (any, error) {
	if cmd.Args().Len() != 2 {
		return nil, fmt.Errorf("usage: candidates <goal-id> <skill-id>")
	}
	list, err := p.Service.Candidates(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return nil, err
	}
	if limit := int(cmd.Int("limit")); limit > 0 && len(list.Rows) > limit {
		list.Rows = list.Rows[:limit]
	}
	return list, nil
}

func main() {
	cmd := &cli.Command{
		Name:    "skillgap",
		Usage:   "Skill-gap planner: readiness scoring, coverage, roadmaps and strategy tooling",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the planner tools over MCP stdio",
				Action: runMCP,
			},
			{
				Name:  "reformat",
				Usage: "Reformat free-text strategy into the strategy document format",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Input file (stdin when empty or -)"},
					&cli.BoolFlag{Name: "apply", Usage: "Replace the strategy document when the proposal is accepted"},
				},
				Action: withPlanner(reformatStrategy),
			},
			{
				Name:  "rank",
				Usage: "Select the best employees across all goals",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top", Aliases: []string{"n"}, Usage: "Number of employees to select (config default when 0)"},
				},
				Action: withPlanner(rank),
			},
			{
				Name:  "map-skills",
				Usage: "Generate the strategy skill code to HR skill name mapping",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Usage: "Write the mapping file and reload"},
				},
				Action: withPlanner(mapSkills),
			},
			{
				Name:      "candidates",
				Usage:     "Rank employees for one goal requirement",
				ArgsUsage: "<goal-id> <skill-id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum rows (all when 0)"},
				},
				Action: withPlanner(candidates),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
