package report

import (
	"fmt"
	"html/template"
	"io"
	"path"

	"github.com/panbanda/complore/pkg/models"
	"github.com/panbanda/complore/pkg/tree"
)

// TailwindURL is the stylesheet the flamegraph page links.
const TailwindURL = "https://cdn.jsdelivr.net/npm/tailwindcss@2.2.19/dist/tailwind.min.css"

type flamePage struct {
	Title      string
	Stylesheet string
	Namespace  string
	Components models.Components
	Root       flameNode
}

type flameBar struct {
	Class string
	Style template.CSS
}

type flameFile struct {
	Name   string
	Detail string
	Bar    flameBar
}

type flameNode struct {
	ID       string
	Label    string
	Open     bool
	Compact  bool
	HasBar   bool
	Bar      flameBar
	LOC      int
	Activity int
	File     flameFile
	Files    []flameFile
	Children []flameNode
}

type flameBuilder struct {
	maxes      models.Counts
	components models.Components
	state      *SectionState
}

func (b *flameBuilder) bar(c models.Counts, fullHeight bool) flameBar {
	h := MetricScale(c, b.maxes, b.components.Height)
	col := MetricScale(c, b.maxes, b.components.Color)
	height := fmt.Sprintf("%dpx", BarHeight(h))
	class := "w-2 rounded"
	if fullHeight {
		height = "auto"
		class += " self-stretch"
	}
	return flameBar{
		Class: class,
		Style: template.CSS(fmt.Sprintf("height:%s;background:%s", height, barColor(col))),
	}
}

func (b *flameBuilder) file(f models.FileMetrics) flameFile {
	return flameFile{
		Name:   path.Base(f.Path),
		Detail: detailLine(f),
		Bar:    b.bar(f.Counts(), false),
	}
}

func (b *flameBuilder) node(n *tree.Node, id string) flameNode {
	label := n.Name
	if label == "" {
		label = RootSectionID
	}
	out := flameNode{
		ID:       id,
		Label:    label,
		LOC:      n.Aggregate.LOC,
		Activity: n.Aggregate.Activity,
	}

	if n.IsCompactable() {
		out.Compact = true
		out.Bar = b.bar(n.Aggregate, false)
		out.File = b.file(n.Files[0])
		return out
	}

	out.Open = b.state.IsOpen(id)
	if !n.IsRoot() {
		out.HasBar = true
		out.Bar = b.bar(n.Aggregate, true)
	}
	for _, f := range n.Files {
		out.Files = append(out.Files, b.file(f))
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, b.node(c, SectionID(id, c.Name)))
	}
	return out
}

// RenderHTML writes the interactive flamegraph page: one collapsible
// section per folder, bars sized by the height metric and tinted by the
// color metric. Section state persists in the browser per report.
func (r *Renderer) RenderHTML(w io.Writer, scan *models.ScanResult, components models.Components) error {
	if scan == nil {
		scan = models.NewScanResult(nil)
	}
	t := tree.Build(scan.Items)
	b := &flameBuilder{maxes: scan.Maxes, components: components, state: r.state}

	page := flamePage{
		Title:      r.title,
		Stylesheet: TailwindURL,
		Namespace:  Namespace(t),
		Components: components,
		Root:       b.node(t.Root, RootSectionID),
	}
	return writeTemplate(w, r.flame, page)
}
