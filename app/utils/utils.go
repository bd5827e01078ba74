package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xlab/treeprint"
	"golang.org/x/net/html"
)

// LoadFilesFromDir walks dir and returns the paths of every regular file
// whose extension appears in exts (lowercase, with the dot).
func LoadFilesFromDir(dir string, exts map[string]bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExtractTextFromHTML strips markup from an HTML document, skipping script
// and style subtrees, and normalizes the text into whitespace-joined chunks.
func ExtractTextFromHTML(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " "), nil
}

// BuildTree renders dir as an ASCII tree, used when logging what an ingest
// run picked up from the knowledge folder.
func BuildTree(dir string, tree treeprint.Tree, skipDirs map[string]bool) (string, error) {
	if tree == nil {
		tree = treeprint.New()
		tree.SetValue(filepath.Base(dir))
	}
	if skipDirs == nil {
		skipDirs = map[string]bool{
			".git":      true,
			".idea":     true,
			".vscode":   true,
			".DS_Store": true,
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if skipDirs[entry.Name()] {
				continue
			}
			branch := tree.AddBranch(entry.Name())
			if _, err = BuildTree(filepath.Join(dir, entry.Name()), branch, skipDirs); err != nil {
				return "", err
			}
		} else {
			tree.AddNode(entry.Name())
		}
	}
	return tree.String(), nil
}
