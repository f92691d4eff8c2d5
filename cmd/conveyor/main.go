package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/params"
	"github.com/ormasoftchile/conveyor/pkg/providers"
	"github.com/ormasoftchile/conveyor/pkg/runtime"
	"github.com/ormasoftchile/conveyor/pkg/schema"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "conveyor",
	Short: "Configuration-driven pipeline executor",
	Long:  "conveyor validates and executes declarative stage/action pipelines with typed parameters.",
}

var (
	flagVerbose   bool
	flagDryRun    bool
	flagParams    []string
	flagEnvFile   string
	flagStore     string
	flagArtifacts string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "traverse without invoking real actions")
	runCmd.Flags().StringArrayVar(&flagParams, "param", nil, "set a parameter value (NAME=VALUE, repeatable)")
	runCmd.Flags().StringVar(&flagEnvFile, "env-file", "", "file of NAME=VALUE lines merged into the run environment")
	runCmd.Flags().StringVar(&flagStore, "store", ".conveyor/parameters.yaml", "active parameter store file")
	runCmd.Flags().StringVar(&flagArtifacts, "artifacts", ".conveyor", "run artifacts directory ('' disables)")

	paramsCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report without injecting the parameter set")
	paramsCmd.Flags().StringVar(&flagStore, "store", ".conveyor/parameters.yaml", "active parameter store file")

	rootCmd.AddCommand(validateCmd, runCmd, paramsCmd, schemaCmd, versionCmd)
}

func newLogger() hclog.Logger {
	level := hclog.Info
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "conveyor",
		Level: level,
		Color: hclog.AutoColor,
	})
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [pipeline.yaml]",
	Short: "Validate a pipeline document without executing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := providers.FileLoader{}.Load(args[0])
	if err != nil {
		return err
	}

	engine := runtime.New(newLogger())
	valid, errs := engine.Validate(doc)

	var errorCount int
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(os.Stderr, "  warning [%s] %s\n", e.Phase, e.Message)
		} else {
			errorCount++
			fmt.Fprintf(os.Stderr, "  error   [%s] %s\n", e.Phase, e.Message)
		}
		if e.Path != "" {
			fmt.Fprintf(os.Stderr, "          at: %s\n", e.Path)
		}
	}
	if !valid {
		fmt.Fprintf(os.Stderr, "%s\n", failStyle.Render(fmt.Sprintf("validation failed: %d error(s)", errorCount)))
		return runtime.ErrSettings
	}
	fmt.Println(okStyle.Render("pipeline is valid"))
	return nil
}

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run [pipeline.yaml]",
	Short: "Execute a pipeline document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	doc, err := providers.FileLoader{}.Load(args[0])
	if err != nil {
		return err
	}
	log := newLogger()

	store := &providers.FileStore{Path: flagStore}
	env, err := store.Active()
	if err != nil {
		return err
	}
	if flagEnvFile != "" {
		fileEnv, err := loadEnvFile(flagEnvFile)
		if err != nil {
			return err
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	// --param beats the env file, which beats the store
	for k, v := range params.FromPairs(flagParams) {
		env[k] = v
	}

	engine := runtime.New(log)
	engine.Store = store
	engine.Pipeline = args[0]
	engine.BaseDir = flagArtifacts

	status, err := engine.Run(context.Background(), doc, env, flagDryRun)
	if status != nil {
		renderStatus(status)
	}
	if err != nil {
		if errors.Is(err, params.ErrUpdateRequired) {
			fmt.Println(okStyle.Render("parameter set injected; re-run to execute with parameters visible"))
			return nil
		}
		fmt.Fprintf(os.Stderr, "%s\n", failStyle.Render(err.Error()))
		return err
	}
	fmt.Println(okStyle.Render("pipeline finished: all stages passed"))
	return nil
}

// loadEnvFile reads NAME=VALUE lines; blank lines and # comments are
// skipped.
func loadEnvFile(path string) (params.Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	var pairs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pairs = append(pairs, line)
	}
	return params.FromPairs(pairs), nil
}

// renderStatus prints the per-action outcome table.
func renderStatus(status *runtime.Status) {
	outcomes := status.Outcomes()
	for _, key := range status.Keys() {
		o := outcomes[key]
		state := okStyle.Render("ok  ")
		if o.State != runtime.StateOK {
			state = failStyle.Render("fail")
		}
		line := fmt.Sprintf("  %s  %s  %s", state, keyStyle.Render(o.Key), o.DisplayName)
		if o.Link != "" {
			line += "  " + keyStyle.Render(o.Link)
		}
		fmt.Println(line)
	}
}

// --- params ---

var paramsCmd = &cobra.Command{
	Use:   "params [pipeline.yaml]",
	Short: "Reconcile declared parameters against the active set",
	Args:  cobra.ExactArgs(1),
	RunE:  runParams,
}

func runParams(cmd *cobra.Command, args []string) error {
	doc, err := providers.FileLoader{}.Load(args[0])
	if err != nil {
		return err
	}
	log := newLogger()

	store := &providers.FileStore{Path: flagStore}
	active, err := store.Active()
	if err != nil {
		return err
	}

	decls := doc.ParamDecls()
	for _, d := range decls {
		p, ok := schema.BuildParameter(d)
		if !ok {
			continue
		}
		state := okStyle.Render("active ")
		if _, present := active[p.Name]; !present {
			state = failStyle.Render("missing")
		}
		fmt.Printf("  %s  %s (%s)\n", state, p.Name, p.Kind)
	}

	rec := &params.Reconciler{Store: store, Log: log}
	updateRequired, allValid, err := rec.Reconcile(decls, active, flagDryRun)
	if err != nil {
		if errors.Is(err, params.ErrUpdateRequired) {
			fmt.Println(okStyle.Render("parameter set injected into " + flagStore))
			return nil
		}
		return err
	}
	fmt.Printf("update required: %t, declarations valid: %t\n", updateRequired, allValid)
	return nil
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the generated pipeline JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := schema.GenerateJSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimSpace(string(data)))
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("conveyor %s (%s)\n", version, commit)
	},
}
