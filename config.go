package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jadenpxrk/codeshelf/internal/api"
	"github.com/jadenpxrk/codeshelf/internal/export"
	"github.com/jadenpxrk/codeshelf/internal/ignore"
	"github.com/jadenpxrk/codeshelf/internal/language"
	"github.com/jadenpxrk/codeshelf/internal/logging"
	"github.com/jadenpxrk/codeshelf/internal/scan"
	"github.com/jadenpxrk/codeshelf/internal/tokens"
)

func setDefaults() {
	viper.SetDefault("ignore", []string{})
	viper.SetDefault("use_gitignore", true)
	viper.SetDefault("gitignore_mode", string(ignore.ModeSimple))
	viper.SetDefault("workers", 0)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "console")

	viper.SetDefault("export.software_name", "Software")
	viper.SetDefault("export.version", "1.0")
	viper.SetDefault("export.lines_per_page", 50)
	viper.SetDefault("export.max_pages", 60)
	viper.SetDefault("export.remove_comments", true)
	viper.SetDefault("export.remove_empty_lines", true)
	viper.SetDefault("export.remove_copyright", true)
	viper.SetDefault("export.remove_imports", false)

	viper.SetDefault("tokenizer", tokens.KindTiktoken)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "codeshelf"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("CODESHELF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match CODESHELF_*

	configErr = viper.ReadInConfig()
}

// reportConfig logs the outcome of initConfig once logging is set up.
func reportConfig() {
	switch err := configErr.(type) {
	case nil:
		logging.Info("using config file", logging.String("path", viper.ConfigFileUsed()))
	case viper.ConfigFileNotFoundError:
		logging.Debug("no config file found, using defaults and flags")
	default:
		logging.Warn("error reading config file", logging.Err(err))
	}
}

// settings is the resolved configuration: defaults < config file < env < flags.
type settings struct {
	Ignore        []string
	UseGitignore  bool
	GitignoreMode ignore.Mode
	Workers       int
	LanguagesFile string
	Export        export.Settings
	FontFile      string
	Tokenizer     tokens.Config
}

func loadSettings() (settings, error) {
	mode, err := ignore.ParseMode(viper.GetString("gitignore_mode"))
	if err != nil {
		return settings{}, err
	}

	s := settings{
		Ignore:        viper.GetStringSlice("ignore"),
		UseGitignore:  viper.GetBool("use_gitignore"),
		GitignoreMode: mode,
		Workers:       viper.GetInt("workers"),
		LanguagesFile: viper.GetString("languages_file"),
		Export: export.Settings{
			SoftwareName: viper.GetString("export.software_name"),
			Version:      viper.GetString("export.version"),
			LinesPerPage: viper.GetInt("export.lines_per_page"),
			MaxPages:     viper.GetInt("export.max_pages"),
			Clean: export.CleanOptions{
				RemoveComments:           viper.GetBool("export.remove_comments"),
				RemoveEmptyLines:         viper.GetBool("export.remove_empty_lines"),
				RemoveTrailingWhitespace: true,
				RemoveImports:            viper.GetBool("export.remove_imports"),
				RemoveCopyright:          viper.GetBool("export.remove_copyright"),
			},
		},
		FontFile: viper.GetString("export.font_file"),
		Tokenizer: tokens.Config{
			Kind:  viper.GetString("tokenizer"),
			Model: viper.GetString("tokenizer_model"),
			File:  viper.GetString("tokenizer_file"),
		},
	}
	if s.Export.LinesPerPage <= 0 {
		return settings{}, fmt.Errorf("export.lines_per_page must be positive, got %d", s.Export.LinesPerPage)
	}
	if s.Export.MaxPages <= 0 {
		return settings{}, fmt.Errorf("export.max_pages must be positive, got %d", s.Export.MaxPages)
	}
	return s, nil
}

func (s settings) engine() (api.Engine, error) {
	opts := scan.Options{
		Ignore:        s.Ignore,
		UseGitignore:  s.UseGitignore,
		GitignoreMode: s.GitignoreMode,
	}
	if s.LanguagesFile != "" {
		table, err := language.Load(s.LanguagesFile)
		if err != nil {
			return api.Engine{}, err
		}
		logging.Info("loaded language definitions",
			logging.String("path", s.LanguagesFile),
			logging.Int("extensions", table.Len()))
		opts.Languages = table
	}
	return api.Engine{Options: opts, Workers: s.Workers}, nil
}

// parseSources pairs roots with the weights given as "root=weight,..." in
// ratios. Roots without a weight get 1.
func parseSources(roots []string, ratios string) ([]export.Source, error) {
	weights := map[string]float64{}
	for _, item := range strings.Split(ratios, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		i := strings.LastIndex(item, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid ratio %q, want root=weight", item)
		}
		w, err := strconv.ParseFloat(item[i+1:], 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid weight in ratio %q", item)
		}
		weights[filepath.Clean(item[:i])] = w
	}

	sources := make([]export.Source, len(roots))
	for i, root := range roots {
		w, ok := weights[filepath.Clean(root)]
		if !ok {
			w = 1
		}
		sources[i] = export.Source{Root: root, Ratio: w}
	}
	return sources, nil
}
