package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weirin1/html/internal/logger"
	"github.com/weirin1/html/internal/output"
	"github.com/weirin1/html/pkg/richtext"
)

var translateCmd = &cobra.Command{
	Use:   "translate [file|url|-]...",
	Short: "Translate HTML into a rich-text node tree",
	Long: `Translate HTML documents or fragments into rich-text nodes.

Each input is a file path, an http(s) URL or "-" for stdin (the default).
Fragments are wrapped in a minimal document before parsing; documents that
start with a doctype are parsed as they are. Only the body is translated.

Settings can also come from the config file:

  charset: GBK
  remove_empty_strings: true
  parse_inline_css: true
  default_attrs:
    - {tag: img, name: width, value: 100%}
    - {tag: a, name: target, value: _blank}

Examples:
  richtext translate page.html
  richtext translate --attr a.rel=noopener --pretty page.html
  richtext translate --format jsonl a.html b.html c.html`,
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	flags := translateCmd.Flags()

	// Translation settings
	flags.String("charset", richtext.DefaultCharset, "input charset (e.g. UTF-8, GBK, windows-1252)")
	flags.Bool("keep-empty", false, "keep text nodes that are empty after trimming")
	flags.Bool("no-default-attrs", false, "do not inject configured default attributes")
	flags.StringArray("attr", nil, "inject an attribute into matching elements: tag.name=value (can be repeated)")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.Bool("pretty", false, "indent JSON output")
	flags.Bool("include-metadata", false, "wrap nodes with source, charset, time and stats")
	flags.Bool("stats", false, "print translation stats to stderr")

	// Input settings
	flags.String("fetch-mode", "static", "fetch mode for URLs: static, dynamic")
	flags.Duration("timeout", 30*time.Second, "request timeout for URLs")
	flags.String("max-input-size", "10MB", "max input size (e.g., 512KB, 10MB, 0=unlimited)")

	_ = viper.BindPFlag("charset", flags.Lookup("charset"))
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	flags := cmd.Flags()

	cfg, err := buildConfig(cmd)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	logger.Debug("translation config",
		"charset", cfg.Charset,
		"remove_empty_strings", cfg.RemoveEmptyStrings,
		"default_attrs", len(cfg.DefaultAttrs))

	formatStr, _ := flags.GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	pretty, _ := flags.GetBool("pretty")
	includeMetadata, _ := flags.GetBool("include-metadata")
	showStats, _ := flags.GetBool("stats")

	maxSizeStr, _ := flags.GetString("max-input-size")
	maxSize, err := parseSize(maxSizeStr)
	if err != nil {
		return err
	}
	fetchMode, _ := flags.GetString("fetch-mode")
	timeout, _ := flags.GetDuration("timeout")

	outPath, _ := flags.GetString("output")
	out, closeOut, err := openOutput(cmd, outPath)
	if err != nil {
		return err
	}
	defer func() { _ = closeOut() }()

	writer, err := output.NewWriter(out, format, output.WithPretty(pretty))
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	in := newInputReader(cmd, fetchMode, timeout, maxSize)
	defer func() { _ = in.Close() }()

	for _, name := range inputs {
		doc, err := in.Read(ctx, name)
		if err != nil {
			logger.Error("failed to read input", "input", name, "error", err)
			return err
		}

		docCfg := cfg
		if doc.Fetched && !strings.EqualFold(cfg.Charset, richtext.DefaultCharset) {
			utf8Cfg := *cfg
			utf8Cfg.Charset = richtext.DefaultCharset
			docCfg = &utf8Cfg
		}

		tr, err := richtext.New(doc.HTML, docCfg)
		if err != nil {
			logger.Error("failed to translate input", "input", name, "error", err)
			return fmt.Errorf("%s: %w", name, err)
		}

		rec := &output.Record{
			Source:       doc.Name,
			Charset:      docCfg.Charset,
			TranslatedAt: time.Now().UTC(),
			Nodes:        tr.Nodes(),
		}
		if includeMetadata {
			rec.Stats = tr.Stats()
		}
		if showStats {
			logInfo(cmd, "%s:\n%s", doc.Name, tr.Stats().String())
		}

		if err := writer.Write(rec.Payload(includeMetadata)); err != nil {
			return err
		}
	}

	return writer.Close()
}

// buildConfig layers defaults, the config file, environment and flags.
func buildConfig(cmd *cobra.Command) (*richtext.Config, error) {
	cfg := richtext.DefaultConfig()

	// A configured rule list replaces the defaults instead of being decoded
	// over them element by element.
	defaultRules := cfg.DefaultAttrs
	cfg.DefaultAttrs = nil
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", richtext.ErrInvalidConfig, err)
	}
	if !viper.IsSet("default_attrs") {
		cfg.DefaultAttrs = defaultRules
	}

	flags := cmd.Flags()
	if keepEmpty, _ := flags.GetBool("keep-empty"); keepEmpty {
		cfg.RemoveEmptyStrings = false
	}
	if noDefaults, _ := flags.GetBool("no-default-attrs"); noDefaults {
		cfg.DefaultAttrs = nil
	}

	attrFlags, _ := flags.GetStringArray("attr")
	var rules []richtext.AttrRule
	for _, raw := range attrFlags {
		rule, err := parseAttrRule(raw)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	cfg = cfg.Merge(&richtext.Config{DefaultAttrs: rules})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAttrRule parses "tag.name=value". The value may be empty.
func parseAttrRule(raw string) (richtext.AttrRule, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return richtext.AttrRule{}, fmt.Errorf("invalid --attr %q: expected tag.name=value", raw)
	}
	tag, name, ok := strings.Cut(strings.TrimSpace(key), ".")
	if !ok || tag == "" || name == "" {
		return richtext.AttrRule{}, fmt.Errorf("invalid --attr %q: expected tag.name=value", raw)
	}
	return richtext.AttrRule{Tag: tag, Name: name, Value: value}, nil
}
