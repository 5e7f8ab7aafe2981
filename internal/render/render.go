// Package render draws a reduced traversal result for the terminal. It
// is a presentation capability: the retrieval core only depends on the
// Renderer interface and works without it.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"graphrag/internal/graph"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	nodeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	edgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// ASCII renders a graph as a styled adjacency listing.
type ASCII struct{}

// NewASCII creates the terminal renderer.
func NewASCII() *ASCII { return &ASCII{} }

// Render lists every node by label with its outgoing connections.
func (a *ASCII) Render(g *graph.Graph, labels map[string]string) string {
	nodes := g.Scan()
	header := headerStyle.Render(fmt.Sprintf("Graph: %d nodes, %d edges", len(nodes), g.EdgeCount()))
	var lines []string
	for _, node := range nodes {
		label := labels[node]
		if label == "" {
			label = node
		}
		targets := g.Edges(node)
		if len(targets) == 0 {
			lines = append(lines, nodeStyle.Render(label))
			continue
		}
		names := make([]string, 0, len(targets))
		for target := range targets {
			name := labels[target]
			if name == "" {
				name = target
			}
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, nodeStyle.Render(label)+edgeStyle.Render(" -> "+strings.Join(names, ", ")))
	}
	return boxStyle.Render(header + "\n" + strings.Join(lines, "\n"))
}
