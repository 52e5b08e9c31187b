package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/config"
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/master"
	"github.com/san-kum/cbdfmu/internal/models"
	"github.com/san-kum/cbdfmu/internal/protocol"
	sig "github.com/san-kum/cbdfmu/internal/signal"
	"github.com/san-kum/cbdfmu/internal/storage"
	"github.com/san-kum/cbdfmu/internal/tui"
	"github.com/spf13/cobra"

	_ "github.com/san-kum/cbdfmu/internal/fmi2"
	_ "github.com/san-kum/cbdfmu/internal/fmi3"
)

var (
	dataDir    string
	logLevel   string
	fmiVersion string
	configFile string
	preset     string
	stopTime   float64
	stepSize   float64
	internal   int
	inputs     map[string]string
	params     map[string]string
	outputs    []string
	noSave     bool
	stateSteps int
	stateRun   string
	sweep      string
	parallel   int
	outFile    string

	logger = slog.Default()
)

func main() {
	// .env only supplies defaults; a missing file is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "fmusim",
		Short:         "co-simulation component runner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr("FMUSIM_DATA", ".fmusim"), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("FMUSIM_LOG_LEVEL", "info"), "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a co-simulation and store its outputs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addExperimentFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print results without storing a run")

	watchCmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "step a model live in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchModel,
	}
	addExperimentFlags(watchCmd)

	stateCmd := &cobra.Command{
		Use:   "state [model]",
		Short: "step a model and dump its serialized state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dumpState,
	}
	addExperimentFlags(stateCmd)
	stateCmd.Flags().IntVar(&stateSteps, "steps", 10, "communication steps before the state is captured")
	stateCmd.Flags().StringVar(&stateRun, "attach", "", "store the state next to this run")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run one experiment per value of a swept input",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addExperimentFlags(ensembleCmd)
	ensembleCmd.Flags().StringVar(&sweep, "sweep", "", "NAME=v1,v2,... input to vary across runs")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 4, "runs in flight at once")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run outputs",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run outputs as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run outputs as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	modelsCmd := &cobra.Command{
		Use:   "models [model]",
		Short: "list models, or the variables of one model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for %s\n", args[0])
				return
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  - %s\n", p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, stateCmd, ensembleCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, modelsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func addExperimentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&fmiVersion, "fmi", envOr("FMUSIM_FMI", config.DefaultFMIVersion), "interface version")
	cmd.Flags().Float64Var(&stopTime, "stop", 0, "stop time (overrides config)")
	cmd.Flags().Float64Var(&stepSize, "step", 0, "communication step size (overrides config)")
	cmd.Flags().IntVar(&internal, "internal-steps", 0, "equation evaluations per communication step")
	cmd.Flags().StringToStringVar(&inputs, "input", nil, "input values, NAME=VALUE")
	cmd.Flags().StringToStringVar(&params, "param", nil, "parameter values, NAME=VALUE")
	cmd.Flags().StringSliceVar(&outputs, "out", nil, "outputs to record (default: all outputs)")
}

// loadConfig layers the config file or preset under the command line.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	case preset != "":
		model := config.DefaultModel
		if len(args) > 0 {
			model = args[0]
		}
		c := config.GetPreset(model, preset)
		if c == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(model), ", "))
		}
		cfg = c
	}

	if len(args) > 0 {
		cfg.Model = args[0]
	}
	if cmd.Flags().Changed("fmi") || (configFile == "" && preset == "") {
		cfg.FMIVersion = fmiVersion
	}
	if stopTime > 0 {
		cfg.StopTime = stopTime
	}
	if stepSize > 0 {
		cfg.StepSize = stepSize
	}
	if internal > 0 {
		cfg.InternalSteps = internal
	}
	if len(outputs) > 0 {
		cfg.Outputs = outputs
	}
	var err error
	if cfg.Inputs, err = mergeValues(cfg.Inputs, inputs); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if cfg.ModelParams, err = mergeValues(cfg.ModelParams, params); err != nil {
		return nil, fmt.Errorf("param: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeValues(dst map[string]float64, src map[string]string) (map[string]float64, error) {
	if len(src) == 0 {
		return dst, nil
	}
	if dst == nil {
		dst = make(map[string]float64, len(src))
	}
	for k, s := range src {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		dst[k] = v
	}
	return dst, nil
}

func openSlave(cfg *config.Config, alloc arena.Allocator, name string) (protocol.Slave, error) {
	kind, err := cfg.FMUKind()
	if err != nil {
		return nil, err
	}
	if kind != fmu.CoSimulation {
		return nil, fmt.Errorf("%s instances cannot be driven by the master", kind)
	}
	model, err := models.NewRegistry().Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	opts := cfg.Options()
	opts.Logger = logger
	return protocol.Open(cfg.FMIVersion, protocol.Params{
		Model:        model,
		InstanceName: name,
		Allocator:    alloc,
		Options:      opts,
	})
}

func reportLeaks(t *arena.Tracker) {
	allocs, frees, foreign := t.Stats()
	if n := t.Outstanding(); n != 0 || foreign != 0 {
		logger.Warn("allocator imbalance", "outstanding", n, "foreign", foreign, "allocs", allocs, "frees", frees)
		return
	}
	logger.Debug("allocator balanced", "allocs", allocs)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	tracker := arena.NewTracker(arena.NewPool())
	s, err := openSlave(cfg, tracker, cfg.Model)
	if err != nil {
		return err
	}

	m := master.New(logger.With("model", cfg.Model, "fmi", cfg.FMIVersion))
	result, err := m.Run(ctx, s, cfg.Master())
	reportLeaks(tracker)
	if err != nil {
		return err
	}

	fmt.Printf("model:    %s (fmi %s)\n", cfg.Model, cfg.FMIVersion)
	fmt.Printf("steps:    %d\n", result.StepsTaken)
	if result.Terminated {
		fmt.Printf("stopped:  model requested termination at t=%.4f\n", result.Times[len(result.Times)-1])
	}
	printLast(os.Stdout, result)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	fmt.Printf("\nrun:      %s\n", runID)
	return nil
}

func printLast(w io.Writer, result *master.Result) {
	last := result.Last()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, name := range result.Outputs {
		fmt.Fprintf(tw, "  %s\t%.10g\n", name, last[i])
	}
	tw.Flush()
}

func watchModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	model, err := models.NewRegistry().Get(cfg.Model)
	if err != nil {
		return err
	}

	// The watch view writes to the terminal; keep logs out of its way.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := cfg.Options()
	opts.Kind = fmu.CoSimulation
	opts.Logger = quiet

	inst, err := fmu.Create(model, fmu.Identity{Name: cfg.Model}, arena.Heap{}, opts)
	if err != nil {
		return err
	}
	defer fmu.Destroy(inst)

	if err := inst.ConfigureExperiment(cfg.Tolerance > 0, cfg.Tolerance, cfg.StartTime, true, cfg.StopTime); err != nil {
		return err
	}
	if err := setNamed(inst, cfg.ModelParams); err != nil {
		return err
	}
	if err := inst.EnterInitializationMode(); err != nil {
		return err
	}
	if err := setNamed(inst, cfg.Inputs); err != nil {
		return err
	}
	if err := inst.ExitInitializationMode(); err != nil {
		return err
	}
	defer inst.Terminate()

	w, err := tui.NewWatch(inst, cfg.Outputs, cfg.StepSize, cfg.StopTime)
	if err != nil {
		return err
	}
	return tui.Run(w)
}

func setNamed(inst *fmu.Instance, values map[string]float64) error {
	for name, v := range values {
		vr, err := inst.Lookup(name)
		if err != nil {
			return err
		}
		if err := inst.SetReal([]sig.ValueReference{vr}, []float64{v}); err != nil {
			return err
		}
	}
	return nil
}

func dumpState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	tracker := arena.NewTracker(arena.Heap{})
	defer reportLeaks(tracker)

	s, err := openSlave(cfg, tracker, cfg.Model)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Terminate(); err != nil && !errors.Is(err, fmu.ErrInvalidCallSequence) {
			logger.Warn("terminate failed", "err", err)
		}
		if err := s.Free(); err != nil {
			logger.Warn("free failed", "err", err)
		}
	}()

	state, t, err := advance(s, cfg, stateSteps)
	if err != nil {
		return err
	}

	fmt.Printf("model:   %s (fmi %s)\n", cfg.Model, s.Version())
	fmt.Printf("time:    %.6g\n", t)
	fmt.Printf("signals: %d\n", s.Variables().Len())
	fmt.Printf("bytes:   %d\n\n", len(state))
	fmt.Print(hex.Dump(state))

	if stateRun == "" {
		return nil
	}
	if err := storage.New(dataDir).SaveState(stateRun, state); err != nil {
		return fmt.Errorf("attach state: %w", err)
	}
	fmt.Printf("\nstored with run %s\n", stateRun)
	return nil
}

// advance initializes s from cfg, takes up to n steps and serializes the
// resulting state.
func advance(s protocol.Slave, cfg *config.Config, n int) ([]byte, float64, error) {
	exp := fmu.Experiment{StartTime: cfg.StartTime, StopTimeDefined: true, StopTime: cfg.StopTime}
	if err := s.Setup(exp); err != nil {
		return nil, 0, err
	}
	if err := setReals(s, cfg.ModelParams); err != nil {
		return nil, 0, err
	}
	if err := s.EnterInitialization(); err != nil {
		return nil, 0, err
	}
	if err := setReals(s, cfg.Inputs); err != nil {
		return nil, 0, err
	}
	if err := s.ExitInitialization(); err != nil {
		return nil, 0, err
	}

	t := cfg.StartTime
	for i := 0; i < n; i++ {
		err := s.DoStep(t, cfg.StepSize)
		if errors.Is(err, fmu.ErrSimulationTerminated) {
			break
		}
		if err != nil {
			return nil, t, err
		}
		t += cfg.StepSize
	}

	state, err := s.SaveState()
	return state, t, err
}

func setReals(s protocol.Slave, values map[string]float64) error {
	for name, v := range values {
		vr, err := s.Variables().Lookup(name)
		if err != nil {
			return err
		}
		if err := s.SetReals([]sig.ValueReference{vr}, []float64{v}); err != nil {
			return err
		}
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	name, values, err := parseSweep(sweep)
	if err != nil {
		return err
	}

	cfgs := make([]master.Config, len(values))
	for i, v := range values {
		c := cfg.Master()
		in := make(map[string]float64, len(c.Inputs)+1)
		for k, x := range c.Inputs {
			in[k] = x
		}
		in[name] = v
		c.Inputs = in
		cfgs[i] = c
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool := arena.NewTracker(arena.NewPool())
	open := func(run int) (protocol.Slave, error) {
		return openSlave(cfg, pool, fmt.Sprintf("%s-%d", cfg.Model, run))
	}
	ens := master.NewEnsemble(master.New(logger.With("model", cfg.Model)), open, parallel)
	results, err := ens.Run(ctx, cfgs)
	reportLeaks(pool)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\t%s\n", strings.ToUpper(name), strings.Join(results[0].Outputs, "\t"))
	for i, r := range results {
		cols := make([]string, len(r.Outputs))
		for j, v := range r.Last() {
			cols[j] = strconv.FormatFloat(v, 'g', 8, 64)
		}
		fmt.Fprintf(w, "%g\t%d\t%s\n", values[i], r.StepsTaken, strings.Join(cols, "\t"))
	}
	return w.Flush()
}

func parseSweep(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("sweep must look like NAME=v1,v2,...; got %q", s)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("sweep value %q: %w", f, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tFMI\tTIME\tSTOP\tSTEP\tSTEPS\tSTATE")

	for _, run := range runs {
		state := ""
		if run.HasState {
			state = "yes"
		}
		stopped := fmt.Sprintf("%.2fs", run.StopTime)
		if run.Terminated {
			stopped += "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Model,
			run.FMIVersion,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			stopped,
			run.StepSize,
			run.Steps,
			state,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadOutputs(runID)
	if err != nil {
		return err
	}
	if len(result.Values) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(result.Values))

	const maxPlots = 6
	for i, name := range result.Outputs {
		if i == maxPlots {
			break
		}
		data, _ := result.Column(name)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func openOutput() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadOutputs(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, result); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported %d rows to %s\n", len(result.Values), outFile)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadOutputs(args[0])
	if err != nil {
		return err
	}
	result.StepsTaken = meta.Steps
	result.Terminated = meta.Terminated

	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta.Model, meta.FMIVersion, result); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := models.NewRegistry()
	if len(args) == 0 {
		fmt.Printf("interface versions: %s\n\n", strings.Join(protocol.Versions(), ", "))
		fmt.Println("models:")
		for _, name := range reg.List() {
			fmt.Printf("  - %s\n", name)
		}
		return nil
	}

	model, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n\n", model.Name(), model.GUID())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VR\tNAME\tCAUSALITY\tDESCRIPTION")
	for _, v := range model.Variables().Variables() {
		if v.Causality == sig.Local {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", v.VR, v.Name, v.Causality, v.Description)
	}
	return w.Flush()
}
