// Package fetalheart assembles the fetal heart rate audio dataset from one
// folder per category
package fetalheart

import "fmt"
import "os"
import "path/filepath"
import "sort"
import "strings"

import "github.com/neurlang/fetalheart/datasets"

// DefaultCategories are the category folder names, in label order
var DefaultCategories = []string{"absent", "regular", "irregular"}

// DefaultExtension is the extension of the audio files
const DefaultExtension = ".wav"

// Assemble lists the files with extension ext (case insensitive) in
// root/<category> for every category, labelled with the category index.
// Files are sorted by name inside a category. A missing folder or a
// category without files yields an error wrapping datasets.ErrEmptyDataset.
func Assemble(root string, categories []string, ext string) (*datasets.Dataset, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories: %w", datasets.ErrEmptyDataset)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	d := &datasets.Dataset{Classes: append([]string(nil), categories...)}
	for label, category := range categories {
		dir := filepath.Join(root, category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("category %q: %v: %w", category, err, datasets.ErrEmptyDataset)
		}
		var names []string
		for _, entry := range entries {
			if ext != "" && !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				continue
			}
			// follows symbolic links, dangling ones are skipped
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			names = append(names, entry.Name())
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("category %q: no %s files in %s: %w", category, ext, dir, datasets.ErrEmptyDataset)
		}
		sort.Strings(names)
		for _, name := range names {
			d.Samples = append(d.Samples, datasets.Sample{Path: filepath.Join(dir, name), Label: label})
		}
	}
	return d, nil
}
