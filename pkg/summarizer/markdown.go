package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/user/reelcut/pkg/timecode"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the report footer.
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

	fmt.Fprintf(&b, "# %s\n\n", t("Highlight Reel Summary"))

	// Source
	fmt.Fprintf(&b, "## %s\n\n", t("Source"))
	f.row(&b, true, t("Item"), t("Value"))
	f.row(&b, false, t("File"), code(s.Source.Path))
	f.row(&b, false, t("Resolution"), resolution(s.Source.Width, s.Source.Height))
	f.row(&b, false, t("Frame Rate"), fps(s.Source.FPS))
	if s.Source.FrameCount > 0 {
		f.row(&b, false, t("Frames"), humanize.Comma(int64(s.Source.FrameCount)))
	}
	f.row(&b, false, t("Duration"), seconds(s.Source.DurationSec))
	f.row(&b, false, t("Audio"), yesNo(t, s.Source.HasAudio))
	b.WriteString("\n")

	// Segments
	if len(s.Segments) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Segments"))
		f.row(&b, true, "#", t("Frames"), t("Time"), t("Length"), t("Status"))
		for _, seg := range s.Segments {
			span := "-"
			if s.Source.FPS > 0 {
				span = timecode.FormatFFmpeg(timecode.ToSeconds(seg.Start, s.Source.FPS)) + " - " +
					timecode.FormatFFmpeg(timecode.ToSeconds(seg.End+1, s.Source.FPS))
			}
			f.row(&b, false,
				fmt.Sprintf("%03d", seg.Index),
				fmt.Sprintf("%d-%d", seg.Start, seg.End),
				span,
				humanize.Comma(int64(seg.Frames)),
				segmentStatus(t, seg),
			)
		}
		b.WriteString("\n")
	}

	// Output
	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	f.row(&b, true, t("Item"), t("Value"))
	f.row(&b, false, t("File"), code(s.Output.Path))
	f.row(&b, false, t("Resolution"), resolution(s.Output.Width, s.Output.Height))
	f.row(&b, false, t("Frame Rate"), fps(s.Output.FPS))
	f.row(&b, false, t("Frames"), humanize.Comma(int64(s.Output.FrameCount)))
	f.row(&b, false, t("Duration"), seconds(s.Output.DurationSec()))
	f.row(&b, false, t("File Size"), formatBytes(s.Output.FileSize))
	f.row(&b, false, t("Audio"), yesNo(t, s.Output.AudioMuxed))
	if s.Output.ContactSheet != "" {
		f.row(&b, false, t("Contact Sheet"), code(s.Output.ContactSheet))
	}
	b.WriteString("\n")
	for _, skipped := range s.Output.MergeSkipped {
		fmt.Fprintf(&b, "- %s: %s\n", t("Skipped during merge"), code(skipped))
	}
	if len(s.Output.MergeSkipped) > 0 {
		b.WriteString("\n")
	}

	// Settings
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	f.row(&b, true, t("Item"), t("Value"))
	f.row(&b, false, t("Scale"), fmt.Sprintf("x%g", s.Settings.Scale))
	f.row(&b, false, t("Interpolation"), s.Settings.Interpolation)
	f.row(&b, false, t("Codec"), s.Settings.Codec)
	if s.Settings.Bitrate > 0 {
		f.row(&b, false, t("Bitrate"), fmt.Sprintf("%d kbps", s.Settings.Bitrate))
	} else {
		f.row(&b, false, t("Quality"), fmt.Sprintf("CRF %d", s.Settings.Quality))
	}
	f.row(&b, false, t("Audio"), t(s.Settings.AudioMode))
	b.WriteString("\n")

	// Timings
	if len(s.Stages) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Stage Timings"))
		f.row(&b, true, t("Stage"), t("Time"))
		for _, st := range s.Stages {
			f.row(&b, false, st.Name, st.Duration.Round(time.Millisecond).String())
		}
		if s.TotalDuration > 0 {
			f.row(&b, false, "**"+t("Total")+"**", s.TotalDuration.Round(time.Millisecond).String())
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format(time.RFC3339))
	if s.RunID != "" {
		footer += fmt.Sprintf(" (%s %s)", t("run"), s.RunID)
	}
	if f.version != "" {
		footer += " · reelcut " + f.version
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func (f *MarkdownFormatter) row(b *strings.Builder, header bool, cells ...string) {
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	if header {
		seps := make([]string, len(cells))
		for i := range seps {
			seps[i] = "---"
		}
		b.WriteString("|" + strings.Join(seps, "|") + "|\n")
	}
}

func segmentStatus(t func(string) string, seg SegmentInfo) string {
	switch {
	case seg.Error != "":
		return t("Failed") + ": " + seg.Error
	case seg.Skipped:
		return t("Out of range")
	case seg.Truncated:
		return t("Truncated")
	default:
		return t("OK")
	}
}

func yesNo(t func(string) string, v bool) string {
	if v {
		return t("Yes")
	}
	return t("No")
}

func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

func resolution(w, h int) string {
	if w <= 0 || h <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func fps(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f fps", v)
}

func seconds(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f s", v)
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
