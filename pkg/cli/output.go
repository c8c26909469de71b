package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

var hintColors = map[types.PresentationHint]*color.Color{
	types.HintNeutral: color.New(color.FgWhite),
	types.HintSuccess: color.New(color.FgGreen),
	types.HintDanger:  color.New(color.FgRed, color.Bold),
	types.HintWarning: color.New(color.FgYellow),
}

var warnColor = color.New(color.FgYellow, color.Bold)

// statusText renders a status with its label in the color of its hint
func statusText(s types.AssetStatus) string {
	p := s.Presentation()
	c, ok := hintColors[p.Hint]
	if !ok {
		return p.Label
	}
	return c.Sprint(p.Label)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printTasks(w io.Writer, tasks []*model.TaskSummary) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tASSETS\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.ID, t.Name, t.AssetCount, t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func printAssets(w io.Writer, assets []*model.Asset) {
	tw := newTable(w)
	fmt.Fprintln(tw, "CODE\tNAME\tCATEGORY\tUSER\tDEPARTMENT\tLOCATION\tSTATUS")
	for _, a := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Code, a.Name, a.Category, a.User, a.Department, a.Location, statusText(a.Status))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, summary model.StatusSummary) {
	parts := make([]string, 0, len(summary))
	for _, sc := range summary.Ordered() {
		parts = append(parts, fmt.Sprintf("%s %d", statusText(sc.Status), sc.Count))
	}
	fmt.Fprintf(w, "Total %d: %s\n", summary.Total(), strings.Join(parts, ", "))
}

func printAsset(w io.Writer, a *model.Asset) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Code:\t%s\n", a.Code)
	fmt.Fprintf(tw, "Name:\t%s\n", a.Name)
	category := a.Category
	if model.IsLowValueConsumable(category) {
		category += " (consumable)"
	}
	fmt.Fprintf(tw, "Category:\t%s\n", category)
	fmt.Fprintf(tw, "User:\t%s\n", a.User)
	fmt.Fprintf(tw, "Department:\t%s\n", a.Department)
	fmt.Fprintf(tw, "Location:\t%s\n", a.Location)
	fmt.Fprintf(tw, "Start date:\t%s\n", a.StartDate)
	fmt.Fprintf(tw, "Status:\t%s\n", statusText(a.Status))
	_ = tw.Flush()
}

func printAlreadyChecked(w io.Writer, a *model.Asset) {
	fmt.Fprintln(w, warnColor.Sprintf("Warning: %s was already checked (%s)", a.Code, a.Status.Label()))
}
