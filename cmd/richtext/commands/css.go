package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weirin1/html/internal/logger"
	"github.com/weirin1/html/internal/output"
	"github.com/weirin1/html/pkg/inlinecss"
	"github.com/weirin1/html/pkg/richtext"
)

var cssCmd = &cobra.Command{
	Use:   "css <declarations>",
	Short: "Split an inline style attribute into declarations",
	Long: `Split the value of a style attribute into property/value pairs.

Semicolons inside url(...) do not end a declaration. Properties keep their
first position; a repeated property takes its last value.

Examples:
  richtext css 'color: red; background: url(data:image/png;base64,AAAA)'
  richtext css --show-mask 'background:url(a;b.png);color:red'`,
	Args: cobra.ExactArgs(1),
	RunE: runCSS,
}

func init() {
	rootCmd.AddCommand(cssCmd)

	flags := cssCmd.Flags()
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.Bool("pretty", false, "indent JSON output")
	flags.Bool("include-metadata", false, "wrap declarations with the source text")
	flags.Bool("show-mask", false, "print the masked text and url placeholders to stderr")
}

func runCSS(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.ParseInlineCSS {
		return richtext.ErrInlineCSSDisabled
	}

	css := args[0]
	if showMask, _ := flags.GetBool("show-mask"); showMask {
		masked, mask := inlinecss.MaskURLs(css)
		logInfo(cmd, "masked: %s", masked)
		for _, line := range describeMask(mask) {
			logInfo(cmd, "  %s", line)
		}
	}

	decls, err := inlinecss.ParseDeclarations(css)
	if err != nil {
		logger.Error("failed to parse declarations", "error", err)
		return err
	}
	logger.Debug("declarations parsed", "count", decls.Len())

	formatStr, _ := flags.GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	pretty, _ := flags.GetBool("pretty")
	includeMetadata, _ := flags.GetBool("include-metadata")

	writer, err := output.NewWriter(cmd.OutOrStdout(), format, output.WithPretty(pretty))
	if err != nil {
		return err
	}
	rec := &output.StyleRecord{Source: css, Declarations: decls}
	if err := writer.Write(rec.Payload(includeMetadata)); err != nil {
		return err
	}
	return writer.Close()
}

// describeMask lists placeholders in numeric order as "%%n%% => url(...)".
func describeMask(mask inlinecss.Mask) []string {
	keys := make([]string, 0, mask.Len())
	for k := range mask {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return placeholderIndex(keys[i]) < placeholderIndex(keys[j])
	})

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s => %s", k, mask[k]))
	}
	return lines
}

func placeholderIndex(p string) int {
	n, _ := strconv.Atoi(strings.Trim(p, "%"))
	return n
}
