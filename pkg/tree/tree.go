// Package tree rebuilds the folder hierarchy behind a flat list of metric
// records. Both report renderers draw from the same Tree.
package tree

import (
	"strings"

	"github.com/panbanda/complore/pkg/models"
)

// Node is a folder in the rebuilt hierarchy. The root has an empty Name
// and Path.
type Node struct {
	Name string
	// Path is the slash-joined folder path below the trimmed prefix.
	Path string
	// Children are subfolders in first-insertion order.
	Children []*Node
	// Files are the records whose immediate parent is this folder, in
	// input order. Paths keep their untrimmed form.
	Files []models.FileMetrics
	// Aggregate sums every metric of the records beneath this node, except
	// MaxFunc which is their maximum.
	Aggregate models.Counts

	index map[string]*Node
}

// Tree is a built hierarchy and the common prefix stripped from its paths.
type Tree struct {
	Root   *Node
	Prefix string
}

func newNode(name, path string) *Node {
	return &Node{Name: name, Path: path, index: make(map[string]*Node)}
}

// Child returns the direct subfolder called name, or nil.
func (n *Node) Child(name string) *Node {
	return n.index[name]
}

// IsRoot reports whether n is the top of its tree.
func (n *Node) IsRoot() bool {
	return n.Name == ""
}

// IsCompactable reports whether n is a non-root folder holding exactly one
// file and no subfolders. Such folders render as a single row.
func (n *Node) IsCompactable() bool {
	return !n.IsRoot() && len(n.Files) == 1 && len(n.Children) == 0
}

// Walk visits n and every descendant depth-first, parents before children.
// Returning false from fn skips that node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

func (n *Node) child(name string) *Node {
	if c, ok := n.index[name]; ok {
		return c
	}
	p := name
	if n.Path != "" {
		p = n.Path + "/" + name
	}
	c := newNode(name, p)
	n.index[name] = c
	n.Children = append(n.Children, c)
	return c
}

// CommonPrefix returns the longest run of leading slash-delimited segments
// shared by every path. A single path is its own prefix.
func CommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	first := strings.Split(paths[0], "/")
	n := len(first)
	for _, p := range paths[1:] {
		segs := strings.Split(p, "/")
		n = min(n, len(segs))
		for i := 0; i < n; i++ {
			if segs[i] != first[i] {
				n = i
				break
			}
		}
	}
	return strings.Join(first[:n], "/")
}

// TrimPrefix strips prefix and the separator after it. Paths that do not
// continue past the prefix are returned unchanged.
func TrimPrefix(path, prefix string) string {
	if prefix == "" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, prefix+"/"); ok {
		return rest
	}
	return path
}

// Build nests items under folders named by their paths, after stripping the
// common prefix, and computes every folder's aggregate.
func Build(items []models.FileMetrics) *Tree {
	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}
	prefix := CommonPrefix(paths)

	root := newNode("", "")
	for _, it := range items {
		parts := splitPath(TrimPrefix(it.Path, prefix))
		node := root
		if len(parts) > 1 {
			for _, seg := range parts[:len(parts)-1] {
				node = node.child(seg)
			}
		}
		node.Files = append(node.Files, it)
	}
	aggregate(root)

	return &Tree{Root: root, Prefix: prefix}
}

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func aggregate(n *Node) models.Counts {
	var acc models.Counts
	for _, f := range n.Files {
		acc.Accumulate(f.Counts())
	}
	for _, c := range n.Children {
		acc.Accumulate(aggregate(c))
	}
	n.Aggregate = acc
	return acc
}

// Flatten returns every record beneath n, own files before subfolders.
func Flatten(n *Node) []models.FileMetrics {
	var out []models.FileMetrics
	n.Walk(func(node *Node) bool {
		out = append(out, node.Files...)
		return true
	})
	return out
}

// Depth returns the number of folder levels beneath n.
func Depth(n *Node) int {
	d := 0
	for _, c := range n.Children {
		d = max(d, 1+Depth(c))
	}
	return d
}
