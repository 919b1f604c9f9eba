package muse

import (
	"sort"
	"strings"

	"muse-go/internal/model"
)

// TreeNode is one node of the hierarchical file listing derived from the flat
// path → record mapping.
type TreeNode struct {
	Name     string
	Path     string // full slash-delimited path from the project root
	IsDir    bool
	Children []*TreeNode           // sorted: folders first, then files, key order
	File     *model.FileRecord     // set on leaves only
}

// BuildFileTree groups slash-delimited paths into a folder hierarchy. The
// result is deterministic for a given file set: at every level folders sort
// before files, both in key order. The returned root is an unnamed folder.
func BuildFileTree(files map[string]model.FileRecord) *TreeNode {
	root := &TreeNode{IsDir: true}
	index := map[string]*TreeNode{"": root}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		parts := strings.Split(p, "/")
		parentPath := ""
		for i, part := range parts {
			nodePath := strings.Join(parts[:i+1], "/")
			if node, ok := index[nodePath]; ok {
				if node.IsDir {
					parentPath = nodePath
					continue
				}
				// A file and a folder share a prefix; the file stays a leaf.
				break
			}

			node := &TreeNode{
				Name:  part,
				Path:  nodePath,
				IsDir: i < len(parts)-1,
			}
			if !node.IsDir {
				rec := files[p]
				node.File = &rec
			}
			index[parentPath].Children = append(index[parentPath].Children, node)
			index[nodePath] = node
			parentPath = nodePath
		}
	}

	sortTree(root)
	return root
}

func sortTree(n *TreeNode) {
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}

// Walk visits every node below the root in render order, reporting its depth.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int)) {
	var walk func(node *TreeNode, depth int)
	walk = func(node *TreeNode, depth int) {
		for _, c := range node.Children {
			fn(c, depth)
			walk(c, depth+1)
		}
	}
	walk(n, 0)
}
