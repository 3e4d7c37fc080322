package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/pflag"
)

var Version = "0.1.0"

var (
	currentDir, _ = os.Getwd()
	rootCmd       = &cobra.Command{
		Use:   "lazy-dep",
		Short: "Find React components that can be lazy loaded",
		Long: `Scans the imports of a JavaScript/TypeScript project and reports which imported
components could be switched to lazy loading, based on where components are rendered.`,
		Version: Version,
	}
)

var docsCmd = &cobra.Command{
	Use:   "doc-gen",
	Short: "Generate CLI documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll("./docs", 0755); err != nil {
			return err
		}
		return doc.GenMarkdownTree(rootCmd, "./docs")
	},
}

// ---------------- shared flags ----------------

var (
	tsconfigJsonPath string
	verboseOutput    bool
	quietOutput      bool
)

func addSharedFlags(command *cobra.Command) {
	command.Flags().StringVar(&tsconfigJsonPath, "tsconfig", "",
		"Path to tsconfig.json used for path aliases (default: nearest tsconfig.json)")
	command.Flags().BoolVarP(&verboseOutput, "verbose", "v", false,
		"Print debug logs")
	command.Flags().BoolVarP(&quietOutput, "quiet", "q", false,
		"Print errors only")
}

func commandLogger() *slog.Logger {
	return newLogger(os.Stderr, verboseOutput, quietOutput)
}

// ---------------- analyze ----------------

type analyzeOptions struct {
	Root           string
	RenderTree     string
	Output         string
	TsConfig       string
	Exclude        []string
	FilterMarkup   bool
	ValidateSyntax bool
	RenderedOnly   bool
	Concurrency    int
	TopFiles       int
	Color          bool
}

var (
	analyzeCwd            string
	analyzeConfigPath     string
	analyzeRenderTree     string
	analyzeOutput         string
	analyzeExclude        []string
	analyzeFilterMarkup   bool
	analyzeValidateSyntax bool
	analyzeRenderedOnly   bool
	analyzeConcurrency    int
	analyzeTopFiles       int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report imports that can be converted to lazy imports",
	Long: `Analyzes every source file below the project root, matches the render tree
against import bindings and writes a JSON report with per file and per folder counts.`,
	Example: "lazy-dep analyze -c src --render-tree render-tree.json --output report.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := resolveAnalyzeOptions(cmd.Flags())
		if err != nil {
			return err
		}
		_, err = analyzeCmdFn(cmd.Context(), options, commandLogger(), cmd.OutOrStdout())
		return err
	},
}

// resolveAnalyzeOptions merges the config file with flags; explicitly set flags win.
func resolveAnalyzeOptions(flags *pflag.FlagSet) (analyzeOptions, error) {
	cwd := filepath.Clean(ResolveAbsoluteCwd(analyzeCwd))

	var config LazyDepConfig
	var err error
	switch {
	case analyzeConfigPath != "":
		config, err = LoadConfig(resolveAgainst(currentDir, analyzeConfigPath))
		if err != nil {
			return analyzeOptions{}, fmt.Errorf("could not load configuration from %s: %w", analyzeConfigPath, err)
		}
	default:
		if found, ok := FindConfigFile(cwd); ok {
			config, err = LoadConfig(found)
			if err != nil {
				return analyzeOptions{}, fmt.Errorf("could not load configuration from %s: %w", found, err)
			}
		} else {
			config = LazyDepConfig{Root: cwd}
		}
	}

	options := analyzeOptions{
		Root:           config.Root,
		RenderTree:     config.RenderTree,
		Output:         config.Output,
		TsConfig:       config.TsConfig,
		Exclude:        config.Exclude,
		FilterMarkup:   config.FilterMarkup || os.Getenv("FILTER") == "true",
		ValidateSyntax: config.ValidateSyntax,
		RenderedOnly:   config.RenderedOnly,
		Concurrency:    config.Concurrency,
		TopFiles:       analyzeTopFiles,
		Color:          stdoutIsTerminal(),
	}
	if flags.Changed("cwd") {
		options.Root = cwd
	}
	if flags.Changed("render-tree") {
		options.RenderTree = resolveAgainst(currentDir, analyzeRenderTree)
	}
	if flags.Changed("output") {
		options.Output = resolveAgainst(currentDir, analyzeOutput)
	}
	if flags.Changed("tsconfig") {
		options.TsConfig = resolveAgainst(currentDir, tsconfigJsonPath)
	}
	if flags.Changed("exclude") {
		for _, pattern := range analyzeExclude {
			if err := validatePattern(pattern); err != nil {
				return analyzeOptions{}, err
			}
		}
		options.Exclude = analyzeExclude
	}
	if flags.Changed("filter-markup") {
		options.FilterMarkup = analyzeFilterMarkup
	}
	if flags.Changed("validate-syntax") {
		options.ValidateSyntax = analyzeValidateSyntax
	}
	if flags.Changed("rendered-only") {
		options.RenderedOnly = analyzeRenderedOnly
	}
	if flags.Changed("concurrency") {
		options.Concurrency = analyzeConcurrency
	}
	return options, nil
}

func analyzeCmdFn(ctx context.Context, options analyzeOptions, logger *slog.Logger, stdout io.Writer) (*Report, error) {
	root := filepath.Clean(options.Root)

	walker := SourceFileWalker{Exclude: options.Exclude, Logger: logger}
	files, err := walker.CollectSourceFiles(root)
	if err != nil {
		return nil, err
	}
	logger.Debug("collected source files", "root", root, "count", len(files))

	warnAboutReactVersion(root, logger)

	aliases, err := loadAliases(root, options.TsConfig, logger)
	if err != nil {
		return nil, err
	}

	var records []RenderUsageRecord
	if options.RenderTree != "" {
		records, err = LoadRenderUsage(options.RenderTree, root)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded render usage", "path", options.RenderTree, "records", len(records))
	} else {
		logger.Warn("no render tree given, every internal import is reported as a candidate")
	}

	analyzerOptions := AnalyzerOptions{
		Aliases:     aliases,
		Concurrency: options.Concurrency,
		Logger:      logger,
	}
	if options.FilterMarkup {
		analyzerOptions.Markup = NewTreeSitterMarkupFilter(func(path string) ([]byte, error) {
			return os.ReadFile(DenormalizePathForOS(path))
		})
	}
	if options.ValidateSyntax {
		analyzerOptions.Syntax = CheckSyntax
	}

	result, err := NewAnalyzer(analyzerOptions).Run(ctx, files, records)
	if err != nil {
		return nil, err
	}

	analyses := result.Files
	if options.RenderedOnly {
		analyses = renderedFiles(result.Files, records)
	}

	report := BuildReport(root, analyses)
	report.AddFailures(result.Failures)

	if options.Output != "" {
		if err := report.WriteJSON(options.Output); err != nil {
			return nil, err
		}
		logger.Info("report written", "path", options.Output)
	}

	PrintSummary(stdout, report, options.TopFiles, options.Color)
	return report, nil
}

func renderedFiles(files map[string]*FileAnalysis, records []RenderUsageRecord) map[string]*FileAnalysis {
	rendered := make(map[string]*FileAnalysis, len(records))
	for _, record := range records {
		if fa, ok := files[record.SourceFile]; ok {
			rendered[record.SourceFile] = fa
		}
	}
	return rendered
}

func warnAboutReactVersion(root string, logger *slog.Logger) {
	version, ok, err := DetectReactVersion(root)
	switch {
	case err != nil:
		logger.Warn("could not detect react version", "error", err)
	case !ok:
		logger.Debug("react dependency not found", "root", root)
	case !version.Supported:
		logger.Warn("react version does not support React.lazy", "version", version.Version, "source", version.Source, "required", reactLazyConstraint)
	default:
		logger.Debug("react version", "version", version.Version, "source", version.Source)
	}
}

// loadAliases loads tsconfigPath, or the nearest tsconfig.json above root when
// it is empty. A tsconfig that does not exist is skipped with a warning.
func loadAliases(root string, tsconfigPath string, logger *slog.Logger) (TsConfigAliases, error) {
	if tsconfigPath == "" {
		found, ok := findNearestFile(root, "tsconfig.json")
		if !ok {
			return TsConfigAliases{}, nil
		}
		tsconfigPath = found
	}

	if _, err := os.Stat(tsconfigPath); err != nil {
		logger.Warn("tsconfig not found, path aliases are not resolved", "path", tsconfigPath)
		return TsConfigAliases{}, nil
	}

	aliases, err := LoadTsConfigAliases(tsconfigPath)
	if err != nil {
		return TsConfigAliases{}, fmt.Errorf("failed to load %s: %w", tsconfigPath, err)
	}
	logger.Debug("loaded tsconfig", "path", tsconfigPath, "aliases", len(aliases.Aliases), "baseUrl", aliases.BaseURL)
	return aliases, nil
}

// findNearestFile looks for name in dir and its parents, stopping at the
// directory that holds package.json or .git.
func findNearestFile(dir string, name string) (string, bool) {
	for current := filepath.Clean(dir); ; current = filepath.Dir(current) {
		candidate := filepath.Join(current, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		for _, marker := range []string{"package.json", ".git"} {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return "", false
			}
		}
		if filepath.Dir(current) == current {
			return "", false
		}
	}
}

// ---------------- imports ----------------

var importsCmd = &cobra.Command{
	Use:     "imports <file>",
	Short:   "Print the import bindings of a file and how they resolve",
	Example: "lazy-dep imports src/App.jsx",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importsCmdFn(cmd.OutOrStdout(), resolveAgainst(currentDir, args[0]), tsconfigJsonPath, commandLogger())
	},
}

func importsCmdFn(w io.Writer, filePath string, tsconfigPath string, logger *slog.Logger) error {
	filePath = NormalizePathForInternal(filepath.Clean(filePath))
	aliases, err := loadAliases(filepath.Dir(filePath), tsconfigPath, logger)
	if err != nil {
		return err
	}

	fa, err := NewAnalyzer(AnalyzerOptions{Aliases: aliases, Logger: logger}).FileAnalysis(filePath)
	if err != nil {
		return err
	}

	for _, binding := range fa.Imports {
		target := "external"
		if binding.IsInternal {
			target = binding.ResolvedModulePath
		}
		typeOnly := ""
		if binding.TypeOnly {
			typeOnly = " (type only)"
		}
		fmt.Fprintf(w, "%s -> %s%s\n", binding.ModuleSpecifier, target, typeOnly)
		if binding.Default != nil {
			fmt.Fprintf(w, "  default %s", binding.Default.LocalName)
			if binding.Default.ResolvedExportName != "" {
				fmt.Fprintf(w, " (exports %s)", binding.Default.ResolvedExportName)
			}
			fmt.Fprintln(w)
		}
		if binding.Namespace != "" {
			fmt.Fprintf(w, "  namespace %s\n", binding.Namespace)
		}
		for _, named := range binding.Named {
			prefix := ""
			if named.TypeOnly {
				prefix = "type "
			}
			fmt.Fprintf(w, "  named %s%s as %s\n", prefix, named.ExportedName, named.LocalName)
		}
	}

	for _, dynamic := range fa.Dynamic {
		fmt.Fprintf(w, "%s -> lazy %s\n", dynamic.ModuleSpecifier, dynamic.BoundIdentifier)
	}

	names := fa.CandidateNames()
	if len(names) == 0 {
		return nil
	}
	fmt.Fprintln(w, "candidates:")
	for _, name := range names {
		entry, _ := fa.Candidate(name)
		fmt.Fprintf(w, "  %s: %s#%s\n", name, entry.Path, entry.ExportName)
	}
	return nil
}

// ---------------- default-export ----------------

var defaultExportCmd = &cobra.Command{
	Use:     "default-export <file>",
	Short:   "Print the identity of the default export of a file",
	Example: "lazy-dep default-export src/components/Header.jsx",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return defaultExportCmdFn(cmd.OutOrStdout(), resolveAgainst(currentDir, args[0]), tsconfigJsonPath, commandLogger())
	},
}

func defaultExportCmdFn(w io.Writer, filePath string, tsconfigPath string, logger *slog.Logger) error {
	filePath = NormalizePathForInternal(filepath.Clean(filePath))
	if _, err := os.Stat(DenormalizePathForOS(filePath)); err != nil {
		return fmt.Errorf("cannot read %s: %w", filePath, err)
	}

	aliases, err := loadAliases(filepath.Dir(filePath), tsconfigPath, logger)
	if err != nil {
		return err
	}

	read := func(path string) ([]byte, error) {
		return os.ReadFile(DenormalizePathForOS(path))
	}
	name, ok := NewDefaultExportResolver(read, NewModuleResolver(aliases)).Resolve(filePath)
	if !ok {
		return fmt.Errorf("%s has no default export", filePath)
	}
	fmt.Fprintln(w, name)
	return nil
}

// ---------------- config ----------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lazy-dep configuration",
}

var (
	configInitCwd    string
	configInitFormat string
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default lazy-dep config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := InitConfigFile(filepath.Clean(ResolveAbsoluteCwd(configInitCwd)), strings.ToLower(configInitFormat))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	// analyze flags
	addSharedFlags(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeCwd, "cwd", "c", currentDir,
		"Project root to analyze")
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "",
		"Path to lazy-dep config file or directory containing it (default: config in --cwd)")
	analyzeCmd.Flags().StringVarP(&analyzeRenderTree, "render-tree", "r", "",
		"JSON file with rendered components and their source locations")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "",
		"Write the JSON report to this file")
	analyzeCmd.Flags().StringSliceVarP(&analyzeExclude, "exclude", "e", []string{},
		"Glob patterns to exclude files from analysis")
	analyzeCmd.Flags().BoolVar(&analyzeFilterMarkup, "filter-markup", false,
		"Keep only candidates that are functions returning JSX (also enabled by FILTER=true)")
	analyzeCmd.Flags().BoolVar(&analyzeValidateSyntax, "validate-syntax", false,
		"Parse every file with esbuild and report syntax errors as diagnostics")
	analyzeCmd.Flags().BoolVar(&analyzeRenderedOnly, "rendered-only", false,
		"Report only files that appear in the render tree")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0,
		"Number of files analysed in parallel (default: 2 x GOMAXPROCS)")
	analyzeCmd.Flags().IntVar(&analyzeTopFiles, "top", defaultSummaryTopFiles,
		"Number of files listed in the summary")

	// imports and default-export flags
	addSharedFlags(importsCmd)
	addSharedFlags(defaultExportCmd)

	// config flags
	configInitCmd.Flags().StringVarP(&configInitCwd, "cwd", "c", currentDir,
		"Directory to create the config file in")
	configInitCmd.Flags().StringVarP(&configInitFormat, "format", "f", "json",
		"Config file format: json or yaml")
	configCmd.AddCommand(configInitCmd)

	// add commands
	rootCmd.AddCommand(analyzeCmd, importsCmd, defaultExportCmd, configCmd, docsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
