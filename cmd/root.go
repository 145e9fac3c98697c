package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/scint-sim/scint-sim/internal/telemetry"
	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/generator"
	"github.com/scint-sim/scint-sim/sim/store"
	simtrace "github.com/scint-sim/scint-sim/sim/trace"
)

var (
	// CLI flags for the run command
	configPath   string    // YAML run spec
	seed         int64     // Master seed
	numEvents    int       // Events to generate
	primaries    int       // Primaries per event
	region       string    // Vertex region
	vertex       []float64 // AD_HOC vertex x,y,z in mm
	material     string    // Spectrum material
	component    string    // Spectrum component
	workers      int       // Concurrent event workers
	singleStream bool      // Draw all events from one stream
	outCSV       string    // Per-primary CSV output
	outDB        string    // SQLite output
	traceHeader  string    // Run header YAML output
	traceData    string    // Per-event CSV output
	logLevel     string    // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "scint-sim",
	Short: "Monte Carlo primary event generator for scintillation detectors",
}

// runCmd generates events using the run spec and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate primary events",
	Run: func(cmd *cobra.Command, args []string) {
		envCfg, err := loadEnv()
		if err != nil {
			logrus.Fatalf("Invalid environment: %v", err)
		}
		if !cmd.Flags().Changed("log") {
			logLevel = envCfg.LogLevel
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		spec, err := resolveRunSpec(cmd, envCfg)
		if err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}

		shutdown, err := telemetry.Setup(cmd.Context(), "scint-sim", envCfg.OTelEndpoint)
		if err != nil {
			logrus.Fatalf("Telemetry setup failed: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logrus.Warnf("telemetry shutdown: %v", err)
			}
		}()

		outputs := runOutputs{CSV: outCSV, DB: outDB, TraceHeader: traceHeader, TraceData: traceData, RunSpec: configPath}
		summary, err := executeRun(cmd.Context(), spec, outputs)
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		printSummary(os.Stdout, summary)
	},
}

// registerRunFlags binds the run flags to their package variables.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML run spec")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Master seed (default from SCINT_SIM_SEED, then run spec)")
	cmd.Flags().IntVar(&numEvents, "events", 1, "Number of events to generate")
	cmd.Flags().IntVar(&primaries, "primaries", generator.DefaultNumPrimaries, "Primaries per event")
	cmd.Flags().StringVar(&region, "region", "", "Vertex region (geometry region name or AD_HOC)")
	cmd.Flags().Float64SliceVar(&vertex, "vertex", nil, "AD_HOC vertex as x,y,z in mm")
	cmd.Flags().StringVar(&material, "material", "", "Spectrum material (e.g. LXe, GXe)")
	cmd.Flags().StringVar(&component, "component", "", "Spectrum component (FASTCOMPONENT, SLOWCOMPONENT)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent event workers; output is identical for any value")
	cmd.Flags().BoolVar(&singleStream, "single-stream", false, "Draw all events in order from one stream seeded with --seed (serial)")
	cmd.Flags().StringVar(&outCSV, "out-csv", "", "Write every primary to this CSV file")
	cmd.Flags().StringVar(&outDB, "out-db", "", "Store events in this SQLite database")
	cmd.Flags().StringVar(&traceHeader, "trace-header", "", "Write the run header (YAML) to this file")
	cmd.Flags().StringVar(&traceData, "trace-data", "", "Write per-event summaries (CSV) to this file")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.MarkFlagsRequiredTogether("trace-header", "trace-data")
}

// resolveRunSpec builds the run spec: explicitly set flags override the YAML
// spec, which overrides the environment defaults.
func resolveRunSpec(cmd *cobra.Command, envCfg EnvConfig) (*generator.Spec, error) {
	spec := &generator.Spec{}
	if configPath != "" {
		loaded, err := generator.LoadSpec(configPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
		logrus.Infof("loaded run spec %s", configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		s := seed
		spec.Seed = &s
	} else if spec.Seed == nil {
		s := envCfg.Seed
		spec.Seed = &s
	}
	if flags.Changed("events") || spec.Events == nil {
		n := numEvents
		spec.Events = &n
	}
	if flags.Changed("workers") || spec.Workers == 0 {
		spec.Workers = workers
	}
	if flags.Changed("single-stream") {
		spec.SingleStream = singleStream
	}
	if flags.Changed("primaries") {
		n := primaries
		spec.Generator.Primaries = &n
	}
	if flags.Changed("region") {
		spec.Generator.Region = region
	}
	if flags.Changed("vertex") {
		spec.Generator.Vertex = vertex
	}
	if flags.Changed("material") {
		spec.Generator.Material = material
	}
	if flags.Changed("component") {
		spec.Generator.Component = component
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// runOutputs names the optional output files of a run.
type runOutputs struct {
	CSV         string
	DB          string
	TraceHeader string
	TraceData   string
	RunSpec     string
}

// executeRun builds the generator from spec, generates every event and
// writes the requested outputs. The whole batch runs inside one span.
func executeRun(ctx context.Context, spec *generator.Spec, out runOutputs) (summary *simtrace.RunSummary, err error) {
	cfg, err := spec.GeneratorConfig()
	if err != nil {
		return nil, err
	}
	geom, err := spec.BuildGeometry()
	if err != nil {
		return nil, err
	}
	lib, err := spec.BuildLibrary()
	if err != nil {
		return nil, err
	}
	gen, err := generator.New(cfg, geom, lib)
	if err != nil {
		return nil, err
	}
	rc := spec.RunConfig()

	ctx, span := telemetry.Tracer().Start(ctx, "generate",
		trace.WithAttributes(
			attribute.Int64("scint.seed", rc.Seed),
			attribute.Int("scint.events", rc.Events),
			attribute.Int("scint.primaries", cfg.NumPrimaries),
			attribute.String("scint.region", cfg.Region),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	header := simtrace.NewRunHeader()
	header.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	header.RunSpec = out.RunSpec
	header.Seed = rc.Seed
	header.Events = rc.Events
	header.Workers = rc.Workers
	header.SingleStream = rc.SingleStream
	header.Particle = cfg.Particle
	header.Primaries = cfg.NumPrimaries
	header.Region = cfg.Region
	header.Material = cfg.Material
	header.Component = cfg.Component
	header.Energy = energyMode(cfg)
	header.Direction = directionMode(cfg)
	rt := simtrace.NewRunTrace(header)

	sinks := []func(*sim.Event) error{func(ev *sim.Event) error {
		rt.Record(ev)
		return nil
	}}

	if out.CSV != "" {
		f, cerr := os.Create(out.CSV)
		if cerr != nil {
			return nil, fmt.Errorf("creating primaries CSV: %w", cerr)
		}
		defer func() { _ = f.Close() }()
		pw := simtrace.NewPrimaryWriter(f)
		defer func() {
			if ferr := pw.Flush(); ferr != nil && err == nil {
				err = fmt.Errorf("writing primaries CSV: %w", ferr)
			}
		}()
		sinks = append(sinks, pw.Write)
	}

	if out.DB != "" {
		db, oerr := store.Open(out.DB)
		if oerr != nil {
			return nil, oerr
		}
		defer func() { _ = db.Close() }()
		sinks = append(sinks, func(ev *sim.Event) error {
			return db.SaveEvent(ctx, ev)
		})
	}

	start := time.Now()
	err = generator.Run(ctx, gen, rc,
		func(ev *sim.Event) error {
			for _, sink := range sinks {
				if err := sink(ev); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	summary = simtrace.Summarize(rt)
	span.SetAttributes(attribute.Int("scint.total_primaries", summary.Primaries))
	logrus.Infof("generated %d events, %d primaries in %v", summary.Events, summary.Primaries, time.Since(start))

	if out.TraceHeader != "" {
		rt.Header.Summary = summary
		if err := simtrace.ExportRun(&rt.Header, rt.Records, out.TraceHeader, out.TraceData); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func energyMode(cfg generator.Config) string {
	if cfg.Energy.Type == "" {
		return "spectrum"
	}
	return cfg.Energy.Type
}

func directionMode(cfg generator.Config) string {
	if cfg.Direction.Type == "" {
		return "isotropic"
	}
	return cfg.Direction.Type
}

// printSummary writes the run summary in a fixed layout.
func printSummary(w io.Writer, s *simtrace.RunSummary) {
	_, _ = fmt.Fprintln(w, "=== Generation Summary ===")
	_, _ = fmt.Fprintf(w, "Events              : %d\n", s.Events)
	_, _ = fmt.Fprintf(w, "Primaries           : %d\n", s.Primaries)
	_, _ = fmt.Fprintf(w, "Primaries per event : %.2f\n", s.MeanPrimariesPerEvent)
	_, _ = fmt.Fprintf(w, "Energy mean (eV)    : %.6f\n", s.EnergyMean)
	_, _ = fmt.Fprintf(w, "Energy stddev (eV)  : %.6f\n", s.EnergyStdDev)
	_, _ = fmt.Fprintf(w, "Energy range (eV)   : [%.6f, %.6f]\n", s.MinEnergy, s.MaxEnergy)
	_, _ = fmt.Fprintf(w, "Mean direction      : (%.4f, %.4f, %.4f)\n", s.MeanDirection.X, s.MeanDirection.Y, s.MeanDirection.Z)
}

// Execute runs the CLI root command. An interrupt cancels a run between events.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	registerRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
