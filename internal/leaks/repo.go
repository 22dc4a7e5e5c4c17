package leaks

import (
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/keygate/keygate/internal/types"
)

const maxFileBytes = 1 << 20

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "dist": true,
}

// ScanTree scans the working tree under root.
func ScanTree(root string) ([]types.Finding, error) {
	var out []types.Finding
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxFileBytes {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}
		out = append(out, ScanData(rel, data)...)
		return nil
	})
	return out, err
}

// ScanHistory scans file contents of the last n commits. Repeated leaks are
// collapsed to one finding per (location, message) so a key committed long
// ago does not flood the report once per commit.
func ScanHistory(root string, n int) ([]types.Finding, error) {
	if n <= 0 {
		return nil, nil
	}
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	seen := map[string]bool{}
	var out []types.Finding
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if count >= n {
			return storer.ErrStop
		}
		count++
		files, err := c.Files()
		if err != nil {
			return nil
		}
		defer files.Close()
		return files.ForEach(func(f *object.File) error {
			if f.Size > maxFileBytes {
				return nil
			}
			content, err := f.Contents()
			if err != nil {
				return nil
			}
			loc := c.Hash.String()[:8] + ":" + f.Name
			for _, finding := range ScanData(loc, []byte(content)) {
				// key on the path-independent part so history duplicates collapse
				key := f.Name + "|" + finding.Category + "|" + sevRank(finding)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, finding)
			}
			return nil
		})
	})
	if err != nil && err != storer.ErrStop {
		return out, err
	}
	return out, nil
}

func sevRank(f types.Finding) string {
	// finding messages embed line numbers; severity+first word is stable
	return string(f.Severity) + "|" + strings.SplitN(f.Message, " at ", 2)[0]
}
