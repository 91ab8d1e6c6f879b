// Package parreport renders a completed PAR run as human-readable tables,
// grounded on the teacher's own use of go-pretty for state dumps
// (sarchlab-zeonica/core/util.go's PrintState register/buffer tables) and
// generalized from a per-cycle simulator snapshot to a one-shot PAR summary:
// per-FB macrocell/P-term occupancy, ZIA row utilization, and any sanity
// report carried by a failed run.
package parreport

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/outgraph"
	"github.com/azonenberg/xc2par/xc2errs"
)

// Report is built from a completed (or failed) run and knows how to render
// itself as one or more go-pretty tables.
type Report struct {
	Device device.Device
	Graph  *outgraph.Graph // nil if the run failed before stage F
	Failed *xc2errs.Error  // non-nil if the run ended in an error
}

// New builds a report from a successful output graph.
func New(d device.Device, g *outgraph.Graph) *Report {
	return &Report{Device: d, Graph: g}
}

// NewFailed builds a report from a run that ended in an xc2errs.Error
// (typically KindSanityCheckFailed, carrying a *xc2errs.SanityReport).
func NewFailed(d device.Device, err *xc2errs.Error) *Report {
	return &Report{Device: d, Failed: err}
}

// WriteTable renders the full report (occupancy, then, if present, the
// sanity-failure breakdown) as one string ready to print to a terminal.
func (r *Report) WriteTable() string {
	var sb strings.Builder
	sb.WriteString(r.occupancyTable())
	if r.Failed != nil && r.Failed.Report != nil {
		sb.WriteString("\n\n")
		sb.WriteString(r.sanityTable(r.Failed.Report))
	}
	return sb.String()
}

func (r *Report) occupancyTable() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Function block occupancy (%s)", r.Device.String()))
	t.AppendHeader(table.Row{"FB", "Macrocells", "P-terms", "ZIA rows used"})

	if r.Graph == nil {
		t.AppendRow(table.Row{"-", "-", "-", "-"})
		return t.Render()
	}

	for fb, blk := range r.Graph.FBs {
		mcUsed := 0
		for _, mc := range blk.Macrocells {
			if mc != nil {
				mcUsed++
			}
		}
		ptUsed := 0
		for _, pt := range blk.PTerms {
			if pt != nil {
				ptUsed++
			}
		}
		usedRows := map[int]bool{}
		for _, pt := range blk.PTerms {
			if pt != nil {
				for _, row := range append(append([]int{}, pt.TrueRows...), pt.CompRows...) {
					usedRows[row] = true
				}
			}
		}
		ziaUsed := len(usedRows)
		t.AppendRow(table.Row{
			fb,
			fmt.Sprintf("%d/%d", mcUsed, device.MacrocellsPerFB),
			fmt.Sprintf("%d/%d", ptUsed, device.PTermsPerFB),
			fmt.Sprintf("%d/%d", ziaUsed, device.ZIARowsPerFB),
		})
	}
	return t.Render()
}

func (r *Report) sanityTable(report *xc2errs.SanityReport) string {
	t := table.NewWriter()
	t.SetTitle("Sanity check failures")
	t.AppendHeader(table.Row{"Kind", "Entity", "Reason"})

	mcs := append([]xc2errs.UnassignedMacrocell(nil), report.Macrocells...)
	sort.Slice(mcs, func(i, j int) bool { return mcs[i].Name < mcs[j].Name })
	for _, m := range mcs {
		t.AppendRow(table.Row{"macrocell", m.Name, m.Reason})
	}

	pts := append([]xc2errs.UnassignedPTerm(nil), report.PTerms...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Name < pts[j].Name })
	for _, p := range pts {
		t.AppendRow(table.Row{"pterm", p.Name, p.Reason})
	}

	rows := append([]xc2errs.UnroutableZIARow(nil), report.ZIARows...)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FB != rows[j].FB {
			return rows[i].FB < rows[j].FB
		}
		return rows[i].Row < rows[j].Row
	})
	for _, z := range rows {
		entity := fmt.Sprintf("FB%d row %d", z.FB, z.Row)
		reason := z.Reason
		if len(z.Demands) > 0 {
			reason = fmt.Sprintf("%s (wants: %s)", reason, strings.Join(z.Demands, ", "))
		}
		t.AppendRow(table.Row{"zia-row", entity, reason})
	}

	return t.Render()
}
