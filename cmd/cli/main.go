package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"firesens/adapters/catalog"
	"firesens/adapters/stats/saltelli"
	"firesens/adapters/stats/sobol"
	"firesens/app"
	"firesens/domain/params"
	"firesens/domain/problem"
	"firesens/internal"
	"firesens/internal/config"
	"firesens/internal/errors"
	"firesens/internal/profiling"
	"firesens/internal/testkit"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}

	rootCmd := &cobra.Command{
		Use:           "firesens",
		Short:         "Sobol sensitivity analysis for rate-of-spread models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "ERROR, WARN, INFO, DEBUG or TRACE")
	rootCmd.PersistentFlags().StringVar(&cfg.Paths.BoundsFile, "bounds", cfg.Paths.BoundsFile, "YAML file overriding variable ranges")

	rootCmd.AddCommand(
		newModelsCmd(cfg),
		newAnalyzeCmd(cfg),
		newVerifyCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.CodeFor(err), err)
		os.Exit(errors.ExitCode(err))
	}
}

// runFlags are shared by analyze and verify
type runFlags struct {
	groups    []string
	names     []string
	resultVar string
	format    string
}

func (f *runFlags) register(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringSliceVar(&f.groups, "groups", nil, "parameter groups to vary (default: every canonical group of the model)")
	cmd.Flags().StringSliceVar(&f.names, "params", nil, "explicit subset and order of parameters to vary")
	cmd.Flags().StringVar(&f.resultVar, "result-var", "ROS", "model output to analyze")
	cmd.Flags().StringVar(&f.format, "format", "table", "output format: table or json")
	cmd.Flags().IntVarP(&cfg.Sampling.Count, "samples", "n", cfg.Sampling.Count, "base sample count N")
	cmd.Flags().Int64Var(&cfg.Sampling.Seed, "seed", cfg.Sampling.Seed, "random seed for deterministic operations")
	cmd.Flags().BoolVar(&cfg.Sampling.SecondOrder, "second-order", cfg.Sampling.SecondOrder, "also estimate second-order indices")
	cmd.Flags().IntVar(&cfg.Evaluation.Workers, "workers", cfg.Evaluation.Workers, "concurrent model evaluation workers")
}

func (f *runFlags) request(modelKey string, cfg *config.Config) app.SampleRequest {
	req := app.SampleRequest{
		ModelKey:   modelKey,
		ResultVar:  f.resultVar,
		N:          cfg.Sampling.Count,
		Seed:       cfg.Sampling.Seed,
		ParamNames: f.names,
	}
	for _, g := range f.groups {
		req.Groups = append(req.Groups, params.GroupName(strings.TrimSpace(g)))
	}
	return req
}

func newModelsCmd(cfg *config.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the registered models and their parameter groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWiring(cfg)
			if err != nil {
				return err
			}
			return printModels(cmd.OutOrStdout(), w, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or json")
	return cmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var flags runFlags
	var resamples int
	var confLevel float64

	cmd := &cobra.Command{
		Use:   "analyze [model]",
		Short: "Sample, evaluate and compute Sobol indices for one model output",
		Long: `Sample the selected parameter groups of a model, evaluate the model at
every sample and report first-order (S1) and total-effect (ST) indices.

Example: firesens analyze toyspread --groups environment,fuelstate --result-var ROS -n 2048`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Analysis.BootstrapResamples = resamples
			cfg.Analysis.ConfLevel = confLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
			w, err := newWiring(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := w.context(cmd.Context())
			defer cancel()

			res, err := w.pipeline.Run(ctx, app.RunRequest{SampleRequest: flags.request(args[0], cfg)})
			if err != nil {
				return err
			}
			report, err := w.analyzer.Analyze(ctx, res.ProblemSet, problem.SelectResults)
			if err != nil {
				return err
			}
			return printSobol(cmd.OutOrStdout(), res, report, flags.format)
		},
	}
	flags.register(cmd, cfg)
	cmd.Flags().IntVar(&resamples, "resamples", cfg.Analysis.BootstrapResamples, "bootstrap resamples for confidence intervals")
	cmd.Flags().Float64Var(&confLevel, "conf-level", cfg.Analysis.ConfLevel, "confidence level of the intervals")
	return cmd
}

func newVerifyCmd(cfg *config.Config) *cobra.Command {
	var flags runFlags
	var lookat string

	cmd := &cobra.Command{
		Use:   "verify [model]",
		Short: "Generate a problem set and re-evaluate it to check reproducibility",
		Long: `Generate and evaluate a problem set, optionally split it into train and
validation partitions, then re-evaluate the selected rows and report the mean
absolute deviation from the stored results.

Example: firesens verify linear --val-prop 0.2 --lookat val`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := problem.ParseSelector(lookat)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			w, err := newWiring(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := w.context(cmd.Context())
			defer cancel()

			res, err := w.pipeline.Run(ctx, app.RunRequest{
				SampleRequest: flags.request(args[0], cfg),
				ValProp:       cfg.Evaluation.ValProp,
			})
			if err != nil {
				return err
			}
			report, err := w.verifier.Verify(ctx, res.ProblemSet, sel)
			if err != nil {
				return err
			}
			return printVerification(cmd.OutOrStdout(), report, flags.format)
		},
	}
	flags.register(cmd, cfg)
	cmd.Flags().Float64Var(&cfg.Evaluation.ValProp, "val-prop", cfg.Evaluation.ValProp, "validation proportion; 0 keeps the set unsplit")
	cmd.Flags().StringVar(&lookat, "lookat", string(problem.SelectResults), "rows to verify: results, train or val")
	return cmd
}

// wiring holds the services built from one configuration
type wiring struct {
	cfg      *config.Config
	catalog  *catalog.Registry
	pipeline *app.Pipeline
	analyzer *app.SensitivityAnalyzer
	verifier *app.ErrorVerifier
	logger   *internal.Logger
}

func newWiring(cfg *config.Config) (*wiring, error) {
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	kit := testkit.NewTestKit()

	bounds := kit.Bounds()
	if cfg.Paths.BoundsFile != "" {
		fileBounds, err := catalog.LoadBoundsFile(cfg.Paths.BoundsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "load bounds from %s", cfg.Paths.BoundsFile)
		}
		bounds.Overlay(fileBounds)
		logger.Info("loaded %d variable ranges from %s", len(fileBounds.Names()), cfg.Paths.BoundsFile)
	}

	sampler := saltelli.NewSampler(kit.RNGAdapter(), cfg.Sampling.SecondOrder)
	estimator := sobol.NewEstimator(kit.RNGAdapter(), cfg.Sampling.Seed, cfg.Sampling.SecondOrder)
	estimator.Resamples = cfg.Analysis.BootstrapResamples
	estimator.ConfLevel = cfg.Analysis.ConfLevel

	generator := app.NewSampleGenerator(kit.Catalog(), bounds, sampler, logger)
	evaluator := app.NewModelEvaluator(kit.Catalog(), kit.Merger(), cfg.Evaluation.Workers, logger)

	return &wiring{
		cfg:      cfg,
		catalog:  kit.Registry(),
		pipeline: app.NewPipeline(kit.Catalog(), kit.Merger(), generator, evaluator, kit.RNGAdapter(), logger),
		analyzer: app.NewSensitivityAnalyzer(estimator, logger),
		verifier: app.NewErrorVerifier(kit.Catalog(), kit.Merger(), logger),
		logger:   logger,
	}, nil
}

func (w *wiring) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if w.cfg.Evaluation.Timeout > 0 {
		return context.WithTimeout(parent, w.cfg.Evaluation.Timeout)
	}
	return context.WithCancel(parent)
}

func printModels(out io.Writer, w *wiring, format string) error {
	type groupInfo struct {
		Name       string   `json:"name"`
		Parameters []string `json:"parameters"`
	}
	type modelInfo struct {
		Name   string      `json:"name"`
		Groups []groupInfo `json:"groups"`
	}

	var models []modelInfo
	for _, key := range w.catalog.Keys() {
		m, err := w.catalog.Model(key)
		if err != nil {
			return err
		}
		info := modelInfo{Name: key}
		set := m.Defaults()
		for _, name := range set.GroupNames() {
			g, _ := set.Group(name)
			info.Groups = append(info.Groups, groupInfo{Name: string(name), Parameters: g.Names()})
		}
		models = append(models, info)
	}

	if format == "json" {
		return writeJSON(out, models)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tGROUP\tPARAMETERS")
	for _, m := range models {
		for _, g := range m.Groups {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, g.Name, strings.Join(g.Parameters, ", "))
		}
	}
	return tw.Flush()
}

func printSobol(out io.Writer, res *app.RunResult, report *app.SobolReport, format string) error {
	if format == "json" {
		return writeJSON(out, struct {
			*app.SobolReport
			Fingerprint string                   `json:"fingerprint"`
			Profile     *profiling.ResultProfile `json:"profile,omitempty"`
		}{report, res.ProblemSet.Fingerprint.Short(), res.Profile})
	}

	fmt.Fprintf(out, "Model: %s  Output: %s  Run: %s\n", report.ModelName, report.ResultVar, report.RunID)
	if res.Profile != nil {
		fmt.Fprintf(out, "Samples: %d  mean=%.4g std=%.4g range=[%.4g, %.4g]\n\n",
			res.Profile.Count, res.Profile.Mean, res.Profile.StdDev, res.Profile.Min, res.Profile.Max)
	}

	idx := report.Indices
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tPARAMETER\tS1\t±\tST\t±\t")
	for _, pos := range report.Positions {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t\n",
			pos, report.Names[pos], idx.S1[pos], idx.S1Conf[pos], idx.ST[pos], idx.STConf[pos])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if idx.S2 == nil {
		return nil
	}
	fmt.Fprintln(out, "\nSecond-order interactions:")
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PAIR\tS2\t±\t")
	for j := range report.Names {
		for k := j + 1; k < len(report.Names); k++ {
			fmt.Fprintf(tw, "%s x %s\t%.4f\t%.4f\t\n", report.Names[j], report.Names[k], idx.S2[j][k], idx.S2Conf[j][k])
		}
	}
	return tw.Flush()
}

func printVerification(out io.Writer, report *app.VerificationReport, format string) error {
	if format == "json" {
		return writeJSON(out, report)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", report.RunID)
	fmt.Fprintf(tw, "Model:\t%s (%s)\n", report.ModelName, report.ResultVar)
	fmt.Fprintf(tw, "Selection:\t%s (%d samples)\n", report.Selector, report.Samples)
	fmt.Fprintf(tw, "Mean |deviation|:\t%.6g\n", report.MeanAbsDeviation)
	fmt.Fprintf(tw, "Max |deviation|:\t%.6g\n", report.MaxAbsDeviation)
	return tw.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
