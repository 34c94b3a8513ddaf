package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jadenpxrk/codeshelf/internal/api"
	"github.com/jadenpxrk/codeshelf/internal/export"
	"github.com/jadenpxrk/codeshelf/internal/logging"
	"github.com/jadenpxrk/codeshelf/internal/tokens"
)

var (
	cfgFile   string
	configErr error

	outputFormat    string
	interactiveMode bool

	// read
	fromScan string

	// export
	ratios          string
	exportFormat    string
	copyToClipboard bool
	countTokens     bool
)

// version is the application version, set via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "codeshelf",
	Short: "codeshelf inventories source trees and exports their code.",
	Long: `codeshelf walks local directories, classifies files by language, reads
them in whatever encoding they use and lays the code out as paginated listings.

Results are JSON when stdout is not a terminal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := logging.Init(logging.Config{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		reportConfig()
		return checkFormat(outputFormat)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan ROOT",
	Short: "List the files under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}
		res := engine.Scan(args[0])

		out := cmd.OutOrStdout()
		switch resolveFormat(outputFormat, out) {
		case formatTable:
			return printScanTable(out, res.Files)
		case formatTree:
			_, err := io.WriteString(out, printTree(buildTree(args[0], res.Files)))
			return err
		default:
			return writeJSON(out, res)
		}
	},
}

var typesCmd = &cobra.Command{
	Use:   "types [ROOT...]",
	Short: "Summarize file types across directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}
		roots, err := resolveRoots(args, engine)
		if err != nil || roots == nil {
			return err
		}
		res := engine.DetectTypes(roots)

		out := cmd.OutOrStdout()
		switch resolveFormat(outputFormat, out) {
		case formatTable:
			return printTypesTable(out, res.Types)
		case formatTree:
			return errTreeOnlyForScan
		default:
			return writeJSON(out, res)
		}
	},
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read files listed as JSON on stdin",
	Long: `read loads a JSON array of {"path", "relative_path", "name", "ext"}
requests from stdin, or every file of a scan with --from-scan, and returns
each file's text and line count. A file that cannot be read gets an error
entry; the others are unaffected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}

		var requests []api.ReadRequest
		if fromScan != "" {
			requests = api.RequestsFor(engine.Scan(fromScan).Files)
		} else if err := json.NewDecoder(cmd.InOrStdin()).Decode(&requests); err != nil {
			return fmt.Errorf("failed to decode read requests: %w", err)
		}
		res := engine.ReadBatch(requests)

		out := cmd.OutOrStdout()
		switch resolveFormat(outputFormat, out) {
		case formatTable:
			return printReadTable(out, res.Files)
		case formatTree:
			return errTreeOnlyForScan
		default:
			return writeJSON(out, res)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [ROOT...]",
	Short: "Export the code of directories as a paginated listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyNegatedFlags(cmd)
		s, err := loadSettings()
		if err != nil {
			return err
		}
		engine, err := s.engine()
		if err != nil {
			return err
		}
		roots, err := resolveRoots(args, engine)
		if err != nil || roots == nil {
			return err
		}
		sources, err := parseSources(roots, ratios)
		if err != nil {
			return err
		}

		doc, report := export.Build(engine, sources, s.Export)

		tokenCount := -1
		if countTokens {
			tokenCount, err = countDocumentTokens(s, doc)
			if err != nil {
				logging.Warn("token counting disabled", logging.Err(err))
				tokenCount = -1
			}
		}

		var buf bytes.Buffer
		switch exportFormat {
		case "pdf":
			err = export.RenderPDF(&buf, doc, export.PDFOptions{FontFile: s.FontFile})
		case "text":
			err = export.RenderText(&buf, doc)
		default:
			return fmt.Errorf("unsupported export format: %s. Use 'text' or 'pdf'", exportFormat)
		}
		if err != nil {
			return err
		}

		if copyToClipboard {
			if exportFormat == "pdf" {
				return fmt.Errorf("a PDF export cannot be copied to the clipboard")
			}
			if err := clipboard.WriteAll(buf.String()); err != nil {
				return fmt.Errorf("error writing to clipboard: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Output copied to clipboard.")
		} else if _, err := buf.WriteTo(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}

		printExportSummary(cmd.ErrOrStderr(), report, tokenCount)
		return nil
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick root directories interactively and print them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}
		roots, err := runInteractiveFinder(engine.Options)
		if err != nil {
			return err
		}
		for _, root := range roots {
			fmt.Fprintln(cmd.OutOrStdout(), root)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/codeshelf/config.toml)")
	pf.StringSlice("ignore", nil, "Additional bare names or glob patterns to ignore")
	viper.BindPFlag("ignore", pf.Lookup("ignore"))
	pf.Bool("no-gitignore", false, "Don't respect the root .gitignore")
	pf.String("gitignore-mode", "", "How to read .gitignore: simple or git")
	viper.BindPFlag("gitignore_mode", pf.Lookup("gitignore-mode"))
	pf.IntP("workers", "t", 0, "Number of concurrent file reads (0 or 1 reads sequentially)")
	viper.BindPFlag("workers", pf.Lookup("workers"))
	pf.String("languages", "", "YAML file with extra language definitions")
	viper.BindPFlag("languages_file", pf.Lookup("languages"))
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	pf.String("log-format", "", "Log format: console or json")
	viper.BindPFlag("log_format", pf.Lookup("log-format"))
	pf.StringVarP(&outputFormat, "format", "o", "", "Output format: json, table or tree (default json unless stdout is a terminal)")

	typesCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Pick roots with a fuzzy finder")
	exportCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Pick roots with a fuzzy finder")

	readCmd.Flags().StringVar(&fromScan, "from-scan", "", "Read every file of a scan of this root")

	ef := exportCmd.Flags()
	ef.StringVar(&ratios, "ratio", "", "Per-root weights, e.g. src=2,lib=1 (default 1 each)")
	ef.StringVar(&exportFormat, "as", "text", "Export format: text or pdf")
	ef.BoolVarP(&copyToClipboard, "clipboard", "c", false, "Copy output to clipboard")
	ef.BoolVar(&countTokens, "tokens", false, "Count tokens in the exported code")
	ef.String("name", "", "Software name printed in the page header")
	viper.BindPFlag("export.software_name", ef.Lookup("name"))
	ef.String("version", "", "Software version printed in the page header")
	viper.BindPFlag("export.version", ef.Lookup("version"))
	ef.Int("lines-per-page", 0, "Code lines per page")
	viper.BindPFlag("export.lines_per_page", ef.Lookup("lines-per-page"))
	ef.Int("max-pages", 0, "Maximum number of pages")
	viper.BindPFlag("export.max_pages", ef.Lookup("max-pages"))
	ef.Bool("keep-comments", false, "Don't strip comments")
	ef.Bool("remove-imports", false, "Strip import lines")
	viper.BindPFlag("export.remove_imports", ef.Lookup("remove-imports"))
	ef.String("font", "", "TTF font for PDF output")
	viper.BindPFlag("export.font_file", ef.Lookup("font"))
	ef.String("tokenizer", "", "Tokenizer to use: tiktoken or huggingface")
	viper.BindPFlag("tokenizer", ef.Lookup("tokenizer"))
	ef.String("model", "", "Model name for tiktoken (e.g., gpt-4o)")
	viper.BindPFlag("tokenizer_model", ef.Lookup("model"))
	ef.String("tokenizer-file", "", "Path to local tokenizer.json")
	viper.BindPFlag("tokenizer_file", ef.Lookup("tokenizer-file"))

	rootCmd.AddCommand(scanCmd, typesCmd, readCmd, exportCmd, pickCmd)
}

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newEngine builds an engine from the current settings.
func newEngine(cmd *cobra.Command) (api.Engine, error) {
	applyNegatedFlags(cmd)
	s, err := loadSettings()
	if err != nil {
		return api.Engine{}, err
	}
	return s.engine()
}

// applyNegatedFlags maps the --no-*/--keep-* flags onto their positive keys.
func applyNegatedFlags(cmd *cobra.Command) {
	if f := cmd.Root().PersistentFlags().Lookup("no-gitignore"); f != nil && f.Changed {
		viper.Set("use_gitignore", f.Value.String() != "true")
	}
	if f := cmd.Flags().Lookup("keep-comments"); f != nil && f.Changed {
		viper.Set("export.remove_comments", f.Value.String() != "true")
	}
}

// resolveRoots returns the roots named on the command line, the ones picked
// interactively, or "." when there are none. A nil result with a nil error
// means the user aborted the picker.
func resolveRoots(args []string, engine api.Engine) ([]string, error) {
	if interactiveMode {
		return runInteractiveFinder(engine.Options)
	}
	if len(args) == 0 {
		return []string{"."}, nil
	}
	return args, nil
}

func countDocumentTokens(s settings, doc export.Document) (int, error) {
	counter, err := tokens.New(s.Tokenizer)
	if err != nil {
		return 0, err
	}
	defer counter.Close()

	texts := make([]string, len(doc.Pages))
	for i, page := range doc.Pages {
		texts[i] = strings.Join(page, "\n")
	}
	return tokens.Sum(tokens.CountAll(counter, texts, s.Workers)), nil
}
