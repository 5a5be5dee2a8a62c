package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yosssi/gohtml"

	"github.com/weirin1/html/internal/logger"
	"github.com/weirin1/html/pkg/richtext"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file|url|-]",
	Short: "Print the document the parser sees",
	Long: `Print an input after normalization: fragments are wrapped in a minimal
document declaring the charset, documents with a doctype are unchanged.

Examples:
  echo '<p>x</p>' | richtext normalize
  richtext normalize --pretty page.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	flags := normalizeCmd.Flags()
	flags.String("charset", "", "charset declared in the wrapper (default: configured charset)")
	flags.Bool("pretty", false, "indent the document")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("max-input-size", "10MB", "max input size (e.g., 512KB, 10MB, 0=unlimited)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	charset, _ := flags.GetString("charset")
	if charset == "" {
		charset = viper.GetString("charset")
	}
	if charset == "" {
		charset = richtext.DefaultCharset
	}

	maxSizeStr, _ := flags.GetString("max-input-size")
	maxSize, err := parseSize(maxSizeStr)
	if err != nil {
		return err
	}

	name := "-"
	if len(args) == 1 {
		name = args[0]
	}
	in := newInputReader(cmd, "static", 0, maxSize)
	defer func() { _ = in.Close() }()

	doc, err := in.Read(cmd.Context(), name)
	if err != nil {
		return err
	}

	normalized := richtext.Normalize(doc.HTML, charset)
	logger.Debug("document normalized",
		"input", name,
		"wrapped", !richtext.HasDoctype(doc.HTML),
		"charset", charset)

	if pretty, _ := flags.GetBool("pretty"); pretty {
		normalized = gohtml.Format(normalized)
	}

	outPath, _ := flags.GetString("output")
	out, closeOut, err := openOutput(cmd, outPath)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, normalized); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
