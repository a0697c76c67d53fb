package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/hairbuild/internal/config"
	"github.com/Faultbox/hairbuild/internal/logger"
	"github.com/Faultbox/hairbuild/internal/report"
	"github.com/Faultbox/hairbuild/pkg/formats"
	"github.com/Faultbox/hairbuild/pkg/mesh"
	"github.com/Faultbox/hairbuild/pkg/strands"
)

var errUsage = errors.New("invalid arguments, see hairtool help")

// setup loads the configuration, starts logging and creates a builder.
func setup(f *config.Flags, meshPath string) (*config.Config, *strands.Builder, error) {
	cfg, err := config.Load(f)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	if meshPath != "" {
		cfg.Data.Mesh = meshPath
	}
	opts := []strands.Option{
		strands.WithLogger(logger.Named("build")),
		strands.WithProgress(func(stage string, done, total int) {
			logger.Debug("progress", zap.String("stage", stage), zap.Int("done", done), zap.Int("total", total))
		}),
	}
	if cfg.Data.Mesh != "" {
		m, err := mesh.LoadGLTF(cfg.Data.Mesh)
		if err != nil {
			return nil, nil, fmt.Errorf("mesh: %w", err)
		}
		logger.Info("loaded mesh", zap.String("path", cfg.Data.Mesh), zap.Int("triangles", m.TriangleCount()))
		opts = append(opts, strands.WithMesh(mesh.NewTriangleQuery(m)))
	}
	return cfg, strands.NewBuilder(cfg.Build, opts...), nil
}

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	f := config.RegisterFlags(fs)
	meshPath := fs.String("mesh", "", "glTF reference mesh")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hairtool build [options] <out.hstr> <in.hcrv>...")
		return errUsage
	}

	_, b, err := setup(f, *meshPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := b.BuildProvider(ctx, formats.CurveFileProvider{Paths: fs.Args()[1:]})
	if err != nil {
		return err
	}
	return writeResults(fs.Arg(0), results)
}

func cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	f := config.RegisterFlags(fs)
	meshPath := fs.String("mesh", "", "glTF reference mesh")
	name := fs.String("name", "procedural", "Group name")
	curvesOut := fs.String("curves", "", "Also write the grown curves to this HCRV file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hairtool generate [options] <out.hstr>")
		return errUsage
	}

	_, b, err := setup(f, *meshPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	set, err := b.Generate(ctx, *name)
	if err != nil {
		return err
	}
	if *curvesOut != "" {
		if err := formats.WriteCurvesFile(*curvesOut, []*strands.CurveSet{set}); err != nil {
			return err
		}
		logger.Info("wrote curves", zap.String("path", *curvesOut), zap.Int("curves", set.CurveCount()))
	}
	results, err := b.Build(ctx, []*strands.CurveSet{set})
	if err != nil {
		return err
	}
	return writeResults(fs.Arg(0), results)
}

func writeResults(path string, results []strands.Result) error {
	groups := make([]*strands.StrandGroup, 0, len(results))
	for _, r := range results {
		groups = append(groups, r.Group)
		logger.Info("built group",
			zap.String("group", r.Group.Name),
			zap.Int("strands", r.Group.StrandCount),
			zap.Int("particles", r.Group.ParticleCount),
			zap.Int("lods", r.Group.LOD.Count()),
			zap.Int("resampled", r.Stats.ResampleCalls),
			zap.Int("dropped", r.Stats.DroppedCurves))
	}
	if len(groups) == 0 {
		logger.Warn("no strand groups were built")
	}
	if err := formats.WriteStrandGroupsFile(path, groups); err != nil {
		return err
	}
	fmt.Printf("Wrote %d group(s) to %s\n", len(groups), path)
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hairtool info <file>")
		return errUsage
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	switch {
	case bytes.HasPrefix(data, []byte(formats.CurvesMagic)):
		file, err := formats.ParseCurves(data)
		if err != nil {
			return err
		}
		fmt.Printf("Curve file: %s (version %s)\n", args[0], file.Version)
		for _, s := range file.Sets {
			available, _ := s.Features()
			fmt.Printf("\n%s\n", s.Name)
			fmt.Printf("  Curves:    %d\n", s.CurveCount())
			fmt.Printf("  Vertices:  %d\n", s.VertexCount())
			fmt.Printf("  Units:     %s / %s\n", s.PositionUnit, s.DiameterUnit)
			fmt.Printf("  Streams:   %s\n", available)
		}
	case bytes.HasPrefix(data, []byte(formats.StrandsMagic)):
		file, err := formats.ParseStrandGroups(data)
		if err != nil {
			return err
		}
		fmt.Printf("Strand group file: %s (version %s)\n", args[0], file.Version)
		for _, g := range file.Groups {
			st := g.Stats
			fmt.Printf("\n%s\n", g.Name)
			fmt.Printf("  Strands:   %d x %d particles (%s)\n", g.StrandCount, g.ParticleCount, g.Layout)
			fmt.Printf("  Length:    min %.4f  max %.4f  avg %.4f  total %.2f m\n", st.MinLength, st.MaxLength, st.AvgLength, st.TotalLength)
			fmt.Printf("  Diameter:  max %.4f  avg %.4f mm\n", st.MaxDiameter, st.AvgDiameter)
			fmt.Printf("  Bounds:    %v - %v\n", st.Bounds.Min, st.Bounds.Max)
			fmt.Printf("  LODs:      %v\n", g.LOD.GuideCount)
			fmt.Printf("  Buffers:   texcoords=%t diameters=%t\n", len(g.TexCoords) > 0, len(g.Diameters) > 0)
		}
	default:
		return fmt.Errorf("%s: unrecognized file type", args[0])
	}
	return nil
}

func cmdLOD(args []string) error {
	fs := flag.NewFlagSet("lod", flag.ExitOnError)
	csvPath := fs.String("csv", "", "Write the report to a CSV file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hairtool lod [-csv out.csv] <file.hstr>")
		return errUsage
	}

	file, err := formats.ParseStrandGroupsFile(fs.Arg(0))
	if err != nil {
		return err
	}
	var records []report.LevelRecord
	for _, g := range file.Groups {
		records = append(records, report.Levels(g)...)
	}

	if *csvPath != "" {
		if err := report.WriteCSVFile(*csvPath, records); err != nil {
			return err
		}
		fmt.Printf("Wrote %d level(s) to %s\n", len(records), *csvPath)
		return nil
	}

	fmt.Printf("%-16s %5s %8s %9s %9s %10s\n", "GROUP", "LEVEL", "GUIDES", "FRACTION", "CARRY", "MAX REACH")
	for _, r := range records {
		fmt.Printf("%-16s %5d %8d %9.4f %9.4f %10.5f\n", r.Group, r.Level, r.Guides, r.Fraction, r.CarrySum, r.MaxReach)
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	f := config.RegisterFlags(fs)
	out := fs.String("o", "", "Output path (default: user config dir)")
	fs.Parse(args)

	cfg, err := config.Load(f)
	if err != nil {
		return err
	}
	if *out == "" {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", config.ConfigDir())
		return nil
	}
	if err := cfg.SaveTo(*out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *out)
	return nil
}
