package keygate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/config"
	"github.com/keygate/keygate/internal/engine"
	"github.com/keygate/keygate/internal/history"
	"github.com/keygate/keygate/internal/report"
	"github.com/keygate/keygate/internal/update"
)

var (
	flagURL            string
	flagSharedKey      string
	flagUserToken      string
	flagAllowlist      string
	flagDiscover       bool
	flagNoAuth         bool
	flagMatrix         bool
	flagRPC            bool
	flagMutations      bool
	flagInserts        bool
	flagStorage        bool
	flagSample         bool
	flagSampleRows     int
	flagStrict         bool
	flagSensitive      string
	flagMutationFilter string
	flagMinDelay       time.Duration
	flagTimeout        time.Duration
	flagBudget         time.Duration
	flagInclude        string
	flagExclude        string
	flagBaseline       string
	flagUploadURL      string
	flagUploadToken    string
)

func init() {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Probe the API surface under each credential tier",
		RunE:  runAudit,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagURL, "url", "", "base API origin (or KEYGATE_URL / SUPABASE_URL)")
	cmd.Flags().StringVar(&flagSharedKey, "key", "", "shared low-privilege key (or KEYGATE_SHARED_KEY / SUPABASE_ANON_KEY)")
	cmd.Flags().StringVar(&flagUserToken, "token", "", "optional end-user token (or KEYGATE_USER_TOKEN)")
	cmd.Flags().StringVar(&flagAllowlist, "allowlist", "", "file with table names, one per line")
	cmd.Flags().BoolVar(&flagDiscover, "discover", true, "discover targets from the API self-description")
	cmd.Flags().BoolVar(&flagNoAuth, "no-auth", false, "also probe without any credentials")
	cmd.Flags().BoolVar(&flagMatrix, "matrix", false, "probe all three tiers and print the access matrix")
	cmd.Flags().BoolVar(&flagRPC, "probe-rpc", false, "invoke discovered RPC endpoints with an empty payload (risk-labeled)")
	cmd.Flags().BoolVar(&flagMutations, "probe-mutations", false, "send zero-match PATCH/DELETE probes (risk-labeled)")
	cmd.Flags().BoolVar(&flagInserts, "probe-inserts", false, "send empty-row INSERT probes (risk-labeled)")
	cmd.Flags().BoolVar(&flagStorage, "storage", false, "audit storage buckets")
	cmd.Flags().BoolVar(&flagSample, "sample", false, "pull a literal row sample instead of presence-only reads (risk-labeled)")
	cmd.Flags().IntVar(&flagSampleRows, "sample-rows", 3, "row cap for --sample reads")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "exit non-zero when any High finding is new")
	cmd.Flags().StringVar(&flagSensitive, "sensitive-terms", "", "override the sensitive-name pattern (regexp)")
	cmd.Flags().StringVar(&flagMutationFilter, "mutation-filter", "", "zero-match predicate for mutation probes (caller responsibility)")
	cmd.Flags().DurationVar(&flagMinDelay, "min-delay", 0, "minimum delay between probes (e.g. 250ms; 0 disables)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "per-probe HTTP timeout")
	cmd.Flags().DurationVar(&flagBudget, "run-budget", 0, "stop issuing probes after this much wall time (0 = no budget)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs on target names")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs on target names")
	cmd.Flags().StringVar(&flagBaseline, "baseline", report.DefaultBaselineFile, "accepted-exposures file")
	cmd.Flags().StringVar(&flagUploadURL, "upload", "", "POST the report (JSON) to this URL after the run")
	cmd.Flags().StringVar(&flagUploadToken, "upload-token", "", "Bearer token for upload auth")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	// Load configs: CLI > env > local > global. Credentials come from flags
	// or env only.
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if cwd, err := os.Getwd(); err == nil {
		if c, err := config.LoadLocal(cwd); err == nil {
			lcfg = c
		}
	}

	url := flagURL
	if url == "" {
		url = firstEnv("KEYGATE_URL", "SUPABASE_URL")
	}
	url = pickString(url, lcfg.URL, gcfg.URL)
	if url == "" {
		return fmt.Errorf("no API origin: set --url or KEYGATE_URL")
	}
	sharedKey := flagSharedKey
	if sharedKey == "" {
		sharedKey = firstEnv("KEYGATE_SHARED_KEY", "SUPABASE_ANON_KEY")
	}
	userToken := flagUserToken
	if userToken == "" {
		userToken = firstEnv("KEYGATE_USER_TOKEN")
	}

	allowlist := ""
	if p := pickString(flagAllowlist, lcfg.Allowlist, gcfg.Allowlist); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("allowlist: %w", err)
		}
		allowlist = string(raw)
	}

	minDelay := flagMinDelay
	if !cmd.Flags().Changed("min-delay") {
		if s := pickString("", lcfg.MinDelay, gcfg.MinDelay); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("min_delay in config: %w", err)
			}
			minDelay = d
		}
	}
	timeout := flagTimeout
	if !cmd.Flags().Changed("timeout") {
		if s := pickString("", lcfg.Timeout, gcfg.Timeout); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				timeout = d
			}
		}
	}

	discovery := flagDiscover
	if !cmd.Flags().Changed("discover") && (lcfg.Discovery != nil || gcfg.Discovery != nil) {
		discovery = pickBool(false, lcfg.Discovery, gcfg.Discovery)
	}

	cfg := engine.Config{
		BaseURL:        url,
		SharedKey:      sharedKey,
		UserToken:      userToken,
		Allowlist:      allowlist,
		Discovery:      discovery,
		NoAuth:         pickBool(flagNoAuth, lcfg.NoAuth, gcfg.NoAuth),
		Matrix:         pickBool(flagMatrix, lcfg.Matrix, gcfg.Matrix),
		RPC:            pickBool(flagRPC, lcfg.RPC, gcfg.RPC),
		Mutations:      pickBool(flagMutations, lcfg.Mutations, gcfg.Mutations),
		Inserts:        pickBool(flagInserts, lcfg.Inserts, gcfg.Inserts),
		Storage:        pickBool(flagStorage, lcfg.Storage, gcfg.Storage),
		Sample:         pickBool(flagSample, lcfg.Sample, gcfg.Sample),
		Strict:         pickBool(flagStrict, lcfg.Strict, gcfg.Strict),
		SampleRows:     pickInt(flagSampleRows, lcfg.SampleRows, gcfg.SampleRows),
		MutationFilter: pickString(flagMutationFilter, lcfg.MutationFilter, gcfg.MutationFilter),
		SensitiveTerms: pickString(flagSensitive, lcfg.SensitiveTerms, gcfg.SensitiveTerms),
		MinDelay:       minDelay,
		Timeout:        timeout,
		IncludeGlobs:   pickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:   pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		Tool:           "keygate",
		Version:        version,
	}

	quiet := flagJSON || flagSARIF
	if !quiet {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				_, _ = fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'keygate update' to upgrade\n", latest)
			}
		}
		_, _ = fmt.Fprintf(os.Stderr, "Auditing %s ...\n", url)
		cfg.Progress = func(done, total int) {
			if done%5 == 0 || done == total {
				pct := float64(done) / float64(total) * 100
				_, _ = fmt.Fprintf(os.Stderr, "\r[%d/%d] %.0f%%", done, total, pct)
			}
		}
	}

	ctx := context.Background()
	if flagBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagBudget)
		defer cancel()
	}

	res, err := engine.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("audit error: %w", err)
	}
	if !quiet {
		_, _ = fmt.Fprintln(os.Stderr)
	}
	rep := res.Report

	baseline, _ := report.LoadBaseline(flagBaseline)
	newFindings := report.FilterNew(rep.Findings, baseline)
	gateSummary := report.Summarize(newFindings)

	switch {
	case flagSARIF:
		if err := report.WriteSARIF(os.Stdout, rep); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(os.Stdout, rep); err != nil {
			return err
		}
	case flagText:
		report.PrintText(os.Stdout, rep, report.PrintOptions{NoColor: flagNoColor})
		if cfg.Matrix {
			report.PrintMatrix(os.Stdout, rep.Matrix)
		}
	default:
		report.PrintTable(os.Stdout, rep, report.PrintOptions{NoColor: flagNoColor})
		if cfg.Matrix {
			report.PrintMatrix(os.Stdout, rep.Matrix)
		}
	}
	if !quiet && len(rep.Findings) != len(newFindings) {
		_, _ = fmt.Fprintf(os.Stderr, "%d finding(s) covered by baseline %s\n", len(rep.Findings)-len(newFindings), filepath.Base(flagBaseline))
	}

	if flagReportFile != "" {
		if err := report.SaveFile(flagReportFile, rep); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "report write warning:", err)
		}
	}

	// Optional upload step: do not fail the audit on upload errors
	if flagUploadURL != "" {
		if err := uploadReport(flagUploadURL, flagUploadToken, rep); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "upload warning:", err)
		}
	}

	if dir := historyDir(); dir != "" {
		if err := history.NewLog(dir).Append(history.FromReport(rep)); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "history warning:", err)
		}
	}

	// strict gate counts only findings not accepted in the baseline
	if report.ShouldFail(gateSummary, cfg.Strict) {
		os.Exit(1)
	}
	return nil
}

func historyDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "keygate")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "keygate")
}
