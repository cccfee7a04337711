package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"metascrub/internal/domain/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	highStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mediumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func severityLabel(s model.RiskLevel, score int) string {
	label := fmt.Sprintf("%s %d", s, score)
	switch s {
	case model.RiskHigh:
		return highStyle.Render(label)
	case model.RiskMedium:
		return mediumStyle.Render(label)
	}
	return okStyle.Render(label)
}

func joinTags(tags []model.RiskTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func renderScan(res model.ScanResult) string {
	r := res.Report
	var b strings.Builder
	b.WriteString(headingStyle.Render("Scan complete: "+res.Root) + "\n")
	if res.Cancelled {
		b.WriteString(warnStyle.Render("Stopped early, the report is partial.") + "\n")
	}
	fmt.Fprintf(&b, "Total files: %s\n", humanize.Comma(int64(r.TotalFiles)))

	if len(r.ExtensionCounts) > 0 {
		b.WriteString("\nExtensions:\n")
		exts := make([]string, 0, len(r.ExtensionCounts))
		for ext := range r.ExtensionCounts {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		for _, ext := range exts {
			fmt.Fprintf(&b, "  %-6s %s\n", ext, humanize.Comma(int64(r.ExtensionCounts[ext])))
		}
	}

	b.WriteString("\nSensitive metadata:\n")
	fmt.Fprintf(&b, "  GPS:    %s\n", humanize.Comma(int64(r.GPSCount)))
	fmt.Fprintf(&b, "  Author: %s\n", humanize.Comma(int64(r.AuthorCount)))
	fmt.Fprintf(&b, "  AI:     %s\n", humanize.Comma(int64(r.AICount)))

	fmt.Fprintf(&b, "\nHigh-risk files: %d\n", len(r.HighRiskFiles))
	for _, f := range r.HighRiskFiles {
		fmt.Fprintf(&b, "  [%s] %s  %s\n", severityLabel(f.Severity, f.Score), f.Filename, faintStyle.Render(joinTags(f.Details)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderClean(res model.CleanCommandResult) string {
	s := res.Summary
	var b strings.Builder
	title := "Clean complete: "
	if res.DryRun {
		title = "Clean plan (dry run): "
	}
	b.WriteString(headingStyle.Render(title+res.Plan.SourceRoot+" -> "+res.Plan.DestRoot) + "\n")
	fmt.Fprintf(&b, "Strategy: %s, mode: %s\n", res.Plan.Strategy, res.Mode)
	if res.Cancelled {
		b.WriteString(warnStyle.Render("Stopped early, remaining files were not processed.") + "\n")
	}

	if res.DryRun {
		fmt.Fprintf(&b, "Would clean %s files, %s already up to date\n", humanize.Comma(int64(s.Planned)), humanize.Comma(int64(s.Skipped)))
		var total int64
		for _, p := range res.Plan.Pairs {
			total += p.SizeBytes
		}
		fmt.Fprintf(&b, "Source data: %s\n", humanize.Bytes(uint64(total)))
		return strings.TrimRight(b.String(), "\n")
	}

	fmt.Fprintf(&b, "Succeeded: %s\n", okStyle.Render(humanize.Comma(int64(s.Succeeded))))
	failed := humanize.Comma(int64(s.Failed))
	if s.Failed > 0 {
		failed = highStyle.Render(failed)
	}
	fmt.Fprintf(&b, "Failed:    %s\n", failed)
	fmt.Fprintf(&b, "Skipped:   %s\n", humanize.Comma(int64(s.Skipped)))

	for _, r := range res.Results {
		if r.Succeeded {
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", filepath.Base(r.Source), faintStyle.Render(r.Error))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDump(res model.DumpResult) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(res.Text, "\n") + "\n\n")
	risk := "none"
	if len(res.Risk.Details) > 0 {
		risk = joinTags(res.Risk.Details)
	}
	fmt.Fprintf(&b, "Risk: [%s] %s", severityLabel(res.Risk.Severity, res.Risk.Score), risk)
	return b.String()
}

func renderCompare(res model.CompareResult) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("=== Before ===") + "\n")
	b.WriteString(strings.TrimRight(res.Before, "\n") + "\n\n")
	after := "=== After ==="
	if res.Cleaned != "" {
		after += " " + faintStyle.Render(res.Cleaned)
	}
	b.WriteString(headingStyle.Render(after) + "\n")
	b.WriteString(strings.TrimRight(res.After, "\n"))
	return b.String()
}

func renderDiagnose(res model.DiagnoseResult) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("=== DIAGNOSTIC ===") + "\n")
	fmt.Fprintf(&b, "Checking top %d files...\n", len(res.Entries))
	for _, e := range res.Entries {
		fmt.Fprintf(&b, "\n%s\n", filepath.Base(e.Path))
		for _, line := range e.Lines {
			b.WriteString("  " + line + "\n")
		}
		if e.Truncated {
			b.WriteString(faintStyle.Render("  ... (run compare on this file for the full dump)") + "\n")
		}
	}
	b.WriteString("\n" + headingStyle.Render("=== END ==="))
	return b.String()
}
