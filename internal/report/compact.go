package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/panbanda/complore/pkg/models"
	"github.com/panbanda/complore/pkg/tree"
)

// CompactTitle heads the compact page.
const CompactTitle = "complore compact"

// Layout holds the compact page's pixel constants.
type Layout struct {
	// PxPer10LOC is the bar height granted per ten lines of code.
	PxPer10LOC int
	// ColumnWidth is the width of every bar.
	ColumnWidth int
	// GapY separates stacked bars and groups.
	GapY int
	// FolderPad and FolderBorder add chrome around non-root folders.
	FolderPad    int
	FolderBorder int
}

// DefaultLayout returns the stock compact geometry: 1px per 10 lines,
// 10px columns, 1px gaps and no folder chrome.
func DefaultLayout() Layout {
	return Layout{PxPer10LOC: 1, ColumnWidth: 10, GapY: 1}
}

// chrome is the extra height a non-root folder spends on padding and border.
func (l Layout) chrome() int {
	return l.FolderPad*2 + l.FolderBorder*2
}

// BarHeight is the pixel height for loc lines: ceil(loc/10 * px), at least 1.
func (l Layout) BarHeight(loc int) int {
	px := max(l.PxPer10LOC, 1)
	h := (max(loc, 0)*px + 9) / 10
	return max(1, h)
}

// NodeLayout is the precomputed geometry of one folder.
type NodeLayout struct {
	// FolderBar is the height of the folder's own bar.
	FolderBar int
	// Files are the bar heights of the folder's files, in order.
	Files []int
	// Height is the folder's full column height including chrome.
	Height int
}

// ComputeLayout is the bottom-up layout pass. A folder's height is its bar,
// a gap when it has content, its files separated by gaps, then its
// subfolders separated by gaps with one more gap between the two blocks.
func ComputeLayout(t *tree.Tree, l Layout) map[*tree.Node]NodeLayout {
	out := make(map[*tree.Node]NodeLayout)
	var visit func(n *tree.Node) int
	visit = func(n *tree.Node) int {
		nl := NodeLayout{Files: make([]int, len(n.Files))}

		filesHeight := 0
		for i, f := range n.Files {
			nl.Files[i] = l.BarHeight(f.LOC)
			filesHeight += nl.Files[i]
			if i < len(n.Files)-1 {
				filesHeight += l.GapY
			}
		}

		childrenHeight := 0
		for _, c := range n.Children {
			childrenHeight += visit(c)
		}
		if len(n.Children) > 0 {
			childrenHeight += l.GapY * (len(n.Children) - 1)
			if filesHeight > 0 {
				childrenHeight += l.GapY
			}
		}

		nl.FolderBar = l.BarHeight(n.Aggregate.LOC)
		inner := nl.FolderBar
		if filesHeight > 0 || childrenHeight > 0 {
			inner += l.GapY
		}
		inner += filesHeight + childrenHeight
		if !n.IsRoot() {
			inner += l.chrome()
		}
		nl.Height = max(1, inner)

		out[n] = nl
		return nl.Height
	}
	visit(t.Root)
	return out
}

type compactPage struct {
	Title string
	Root  compactNode
}

type compactCell struct {
	Path  string
	Title string
	Style template.CSS
}

type compactNode struct {
	Path        string
	Title       string
	Height      int
	BarStyle    template.CSS
	GapStyle    template.CSS
	WrapStyle   template.CSS
	Files       []compactCell
	Spacer      bool
	SpacerStyle template.CSS
	Children    []compactNode
}

type compactBuilder struct {
	layout     Layout
	geometry   map[*tree.Node]NodeLayout
	maxes      models.Counts
	components models.Components
}

func (b *compactBuilder) node(n *tree.Node) compactNode {
	g := b.geometry[n]
	title := n.Path
	if title == "" {
		title = "(root)"
	}
	out := compactNode{
		Path:     n.Path,
		Title:    title,
		Height:   g.Height,
		BarStyle: b.style(g.FolderBar, folderColor),
		GapStyle: template.CSS(fmt.Sprintf("gap:%dpx", b.layout.GapY)),
	}
	if !n.IsRoot() && b.layout.chrome() > 0 {
		out.WrapStyle = template.CSS(fmt.Sprintf("padding:%dpx;border:%dpx solid #cbd5e0",
			b.layout.FolderPad, b.layout.FolderBorder))
	}

	for i, f := range n.Files {
		col := MetricScale(f.Counts(), b.maxes, b.components.Color)
		out.Files = append(out.Files, compactCell{
			Path:  f.Path,
			Title: f.Path + "\n" + detailLine(f),
			Style: b.style(g.Files[i], cellColor(col)),
		})
	}
	if len(n.Children) > 0 && len(n.Files) > 0 {
		out.Spacer = true
		out.SpacerStyle = template.CSS(fmt.Sprintf("height:%dpx", b.layout.GapY))
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, b.node(c))
	}
	return out
}

func (b *compactBuilder) style(height int, background string) template.CSS {
	return template.CSS(fmt.Sprintf("width:%dpx;height:%dpx;background:%s",
		b.layout.ColumnWidth, height, background))
}

// RenderCompact writes the compact page: every file is a fixed-width bar
// whose height tracks its line count, stacked under a gray bar per folder.
// A single delegated listener drives the hover tooltip.
func (r *Renderer) RenderCompact(w io.Writer, scan *models.ScanResult, components models.Components) error {
	if scan == nil {
		scan = models.NewScanResult(nil)
	}
	t := tree.Build(scan.Items)
	geometry := ComputeLayout(t, r.layout)
	b := &compactBuilder{
		layout:     r.layout,
		geometry:   geometry,
		maxes:      scan.Maxes,
		components: components,
	}

	title := CompactTitle
	if r.title != DefaultTitle {
		title = r.title
	}
	page := compactPage{
		Title: title,
		Root:  b.node(t.Root),
	}
	return writeTemplate(w, r.compact, page)
}
