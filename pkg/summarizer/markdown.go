package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(translate func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = translate
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Decode Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Input"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Path"), s.Input.Path)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Size"), formatBytes(int64(s.Input.Bytes)))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Container"), s.Input.Container)
	fmt.Fprintf(&b, "| %s | %d |\n", t("NAL Units"), s.Stream.Units)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Parameter Sets"), s.Stream.ParameterSets)
	fmt.Fprintf(&b, "| %s | %d |\n\n", t("Slices"), s.Stream.Slices)

	fmt.Fprintf(&b, "## %s\n\n", t("Decoding"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Engine"), s.Decode.Engine)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Units Submitted"), s.Stream.Submitted)
	if s.Decode.Decoded {
		fmt.Fprintf(&b, "| %s | %d |\n", t("Picture Unit"), s.Decode.UnitIndex)
		fmt.Fprintf(&b, "| %s | %dx%d |\n", t("Picture Size"), s.Decode.Width, s.Decode.Height)
		fmt.Fprintf(&b, "| %s | %d / %d |\n\n", t("Strides"), s.Decode.StrideY, s.Decode.StrideUV)
	} else {
		fmt.Fprintf(&b, "| %s | %s |\n\n", t("Picture"), t("No frame decoded"))
	}

	if s.Output != nil {
		fmt.Fprintf(&b, "## %s\n\n", t("Output"))
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
		fmt.Fprintf(&b, "| %s | %s |\n", t("Path"), s.Output.Path)
		fmt.Fprintf(&b, "| %s | %s |\n", t("Format"), s.Output.Format)
		fmt.Fprintf(&b, "| %s | %dx%d |\n", t("Raster Size"), s.Output.Width, s.Output.Height)
		fmt.Fprintf(&b, "| %s | %s |\n", t("File Size"), formatBytes(int64(s.Output.Bytes)))
		fmt.Fprintf(&b, "| %s | %s |\n", t("Resized"), f.yesNo(s.Output.Resized))
		fmt.Fprintf(&b, "| %s | %s |\n\n", t("Caption"), f.yesNo(s.Output.Annotated))
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format(time.RFC3339))
	if f.version != "" {
		footer += fmt.Sprintf(" (h264grab %s)", f.version)
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

// formatBytes formats a byte count with binary units.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
