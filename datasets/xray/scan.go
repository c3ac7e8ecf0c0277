package xray

import "errors"
import "fmt"
import "os"
import "path/filepath"
import "sort"
import "strings"

// Splits are the folders expected under the dataset root
var Splits = []string{"train", "val", "test"}

// LabelMode selects how a file is assigned its class name
type LabelMode string

const (
	// LabelFolder uses the class folder name, e.g. NORMAL or PNEUMONIA
	LabelFolder LabelMode = "folder"

	// LabelSubtype splits pneumonia into the bacteria and virus tokens of the file name
	LabelSubtype LabelMode = "subtype"
)

// ErrNoImages is returned when a split folder holds no images
var ErrNoImages = errors.New("xray: no images found")

type entry struct {
	path  string
	class string
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpeg", ".jpg", ".png":
		return true
	}
	return false
}

// className labels a file under folder according to mode
func className(mode LabelMode, folder, file string) string {
	if mode != LabelSubtype || strings.EqualFold(folder, "NORMAL") {
		return folder
	}
	base := strings.ToLower(strings.TrimSuffix(file, filepath.Ext(file)))
	for _, token := range strings.FieldsFunc(base, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		if token == "bacteria" || token == "virus" {
			return token
		}
	}
	return folder
}

// scanSplit lists the images of root/split in a stable order
func scanSplit(root, split string, mode LabelMode) ([]entry, error) {
	dir := filepath.Join(root, split)
	folders, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []entry
	for _, folder := range folders {
		if !folder.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, folder.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() || !isImage(f.Name()) {
				continue
			}
			out = append(out, entry{
				path:  filepath.Join(dir, folder.Name(), f.Name()),
				class: className(mode, folder.Name(), f.Name()),
			})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoImages)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}

// SplitCounts holds image counts per class of one split
type SplitCounts struct {
	Split  string
	Counts map[string]int
}

// Counts walks every split of root and counts the images per class.
// Missing split folders are reported with no counts.
func Counts(root string, mode LabelMode) ([]SplitCounts, []string, error) {
	seen := map[string]struct{}{}
	var out []SplitCounts
	for _, split := range Splits {
		sc := SplitCounts{Split: split, Counts: map[string]int{}}
		entries, err := scanSplit(root, split, mode)
		if err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrNoImages) {
			return nil, nil, err
		}
		for _, e := range entries {
			sc.Counts[e.class]++
			seen[e.class] = struct{}{}
		}
		out = append(out, sc)
	}
	return out, sortedNames(seen), nil
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
