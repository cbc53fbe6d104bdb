package staticfiles

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// entry is one row in a directory listing.
type entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime int64 // Unix seconds, 0 if unavailable.
}

// readDirEntries lists dir's children, sorted directories-first then
// case-insensitive alphabetically by name.
func readDirEntries(dir string) ([]entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, len(items))
	for _, item := range items {
		e := entry{Name: item.Name(), IsDir: item.IsDir()}
		if info, err := item.Info(); err == nil {
			if !e.IsDir {
				e.Size = info.Size()
			}
			e.ModTime = info.ModTime().Unix()
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// formatSize renders a byte count as "B" below one KiB, else "KB"/"MB"/"GB"
// with one decimal place.
func formatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KB", "MB", "GB"}
	f := float64(n)
	idx := 0
	for {
		f /= 1024
		if f < 1024 || idx == len(units)-1 {
			break
		}
		idx++
	}
	return fmt.Sprintf("%.1f %s", f, units[idx])
}
