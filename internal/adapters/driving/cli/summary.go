package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// printSummary writes the run heading, its counters and the most touched files.
func printSummary(w io.Writer, result *domain.CrawlResult, sinks []string, top int) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render("Touches for "+result.Repository.FullName())); err != nil {
		return err
	}

	line := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(fmt.Sprintf("%-10s", label)), value)
	}
	line("status", statusStyle(result.Status).Render(string(result.Status)))
	line("run", result.RunID)
	line("pages", humanize.Comma(int64(result.Pages)))
	line("commits", fmt.Sprintf("%s resolved, %s skipped",
		humanize.Comma(int64(result.CommitsResolved)), humanize.Comma(int64(result.SkippedCommits))))
	line("records", humanize.Comma(int64(len(result.Records))))
	line("files", humanize.Comma(int64(len(result.Counts))))
	if result.CountPolicy != "" {
		line("touches", fmt.Sprintf("%s (%s)", humanize.Comma(int64(result.TouchTotal())), result.CountPolicy))
	}
	if result.Duration() > 0 {
		line("took", elapsed(result.StartedAt, result.FinishedAt))
	}
	if !result.ProjectStart.IsZero() {
		line("started", fmt.Sprintf("%s (%s)",
			result.ProjectStart.Format(time.DateOnly), humanize.Time(result.ProjectStart)))
	}
	if result.AbortReason != "" {
		line("reason", result.AbortReason)
	}
	if len(sinks) > 0 {
		line("output", strings.Join(sinks, ", "))
	}

	if top <= 0 || len(result.Counts) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return writeTopFiles(w, result.Counts, top)
}

// writeTopFiles renders the top n entries of counts as a table.
func writeTopFiles(w io.Writer, counts domain.TouchCountIndex, n int) error {
	sorted := counts.Sorted()
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "File", "Touches"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(sorted))
	for i, pc := range sorted {
		data = append(data, []string{strconv.Itoa(i + 1), pc.Path, humanize.Comma(int64(pc.Count))})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// elapsed formats the gap between two instants, e.g. "3 minutes".
func elapsed(from, to time.Time) string {
	return strings.TrimSpace(humanize.RelTime(from, to, "", ""))
}
