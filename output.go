package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/jadenpxrk/codeshelf/internal/api"
	"github.com/jadenpxrk/codeshelf/internal/export"
	"github.com/jadenpxrk/codeshelf/internal/scan"
)

// Output formats.
const (
	formatJSON  = "json"
	formatTable = "table"
	formatTree  = "tree"
)

var errTreeOnlyForScan = errors.New("the tree format is only available for scan")

// checkFormat rejects a --format value no command can print.
func checkFormat(format string) error {
	switch format {
	case "", formatJSON, formatTable, formatTree:
		return nil
	}
	return fmt.Errorf("unsupported output format: %s. Use 'json', 'table' or 'tree'", format)
}

var headerColor = color.New(color.Bold, color.FgCyan)

// resolveFormat picks JSON when stdout is not a terminal and no format was
// asked for.
func resolveFormat(requested string, out io.Writer) string {
	if requested != "" {
		return requested
	}
	if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return formatTable
	}
	return formatJSON
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, headerColor.Sprint(h))
	}
	fmt.Fprintln(tw)
	return tw
}

func printScanTable(w io.Writer, files []scan.FileRecord) error {
	tw := newTable(w, "PATH", "LANGUAGE", "SIZE")
	var total int64
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", f.RelativePath, f.Language, f.Size)
		total += f.Size
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d files, %d bytes\n", len(files), total)
	return err
}

func printTypesTable(w io.Writer, types []scan.TypeSummary) error {
	tw := newTable(w, "EXT", "LANGUAGE", "FILES", "SIZE")
	for _, t := range types {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", t.Extension, t.Language, t.Count, t.TotalSize)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	files, size := scan.Totals(types)
	_, err := fmt.Fprintf(w, "\n%d types, %d files, %d bytes\n", len(types), files, size)
	return err
}

func printReadTable(w io.Writer, files []api.FileContent) error {
	tw := newTable(w, "PATH", "LINES", "ENCODING", "ERROR")
	for _, f := range files {
		errText := ""
		if f.Error != nil {
			errText = color.RedString(*f.Error)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", f.RelativePath, f.LineCount, f.Encoding, errText)
	}
	return tw.Flush()
}

// printExportSummary writes the report of an export. tokenCount < 0 means
// tokens were not counted.
func printExportSummary(w io.Writer, r export.Report, tokenCount int) {
	headerColor.Fprintln(w, "--- Summary ---")
	fmt.Fprintf(w, "Source lines: %d\n", r.SourceLines)
	fmt.Fprintf(w, "Pages: %d\n", r.Pages)
	if r.Truncated {
		color.New(color.FgYellow).Fprintln(w, "Output was truncated to fit the page budget.")
	}
	for _, d := range r.Dirs {
		fmt.Fprintf(w, "  %s: %d/%d files, %d/%d lines\n", d.Path, d.AllocatedFiles, d.TotalFiles, d.AllocatedLines, d.TotalLines)
	}
	if tokenCount >= 0 {
		fmt.Fprintf(w, "Total tokens: %d\n", tokenCount)
	}
	if len(r.Failed) > 0 {
		color.New(color.FgRed).Fprintf(w, "Files failed to read: %d\n", len(r.Failed))
	}
}

// node is an entry in the directory tree view of a scan.
type node struct {
	name     string
	children []*node
	index    map[string]*node
}

// buildTree arranges scanned files into a tree keyed by path segment.
func buildTree(rootName string, files []scan.FileRecord) *node {
	root := &node{name: rootName, index: map[string]*node{}}
	for _, f := range files {
		cur := root
		for _, seg := range strings.Split(f.RelativePath, "/") {
			child, ok := cur.index[seg]
			if !ok {
				child = &node{name: seg, index: map[string]*node{}}
				cur.index[seg] = child
				cur.children = append(cur.children, child)
			}
			cur = child
		}
	}
	sortChildren(root)
	return root
}

// sortChildren recursively sorts the children of a node alphabetically.
func sortChildren(n *node) {
	sort.Slice(n.children, func(i, j int) bool {
		return n.children[i].name < n.children[j].name
	})
	for _, child := range n.children {
		sortChildren(child)
	}
}

// printTree generates the string representation of the tree.
func printTree(root *node) string {
	var builder strings.Builder
	builder.WriteString(root.name)
	builder.WriteString("\n")
	printNode(&builder, root.children, "")
	return builder.String()
}

func printNode(builder *strings.Builder, children []*node, prefix string) {
	for i, n := range children {
		connector := "├── "
		newPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			newPrefix = prefix + "    "
		}

		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(n.name)
		builder.WriteString("\n")

		if len(n.children) > 0 {
			printNode(builder, n.children, newPrefix)
		}
	}
}
