package engine

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/config"
)

// openSources builds the lookup chain of a session: patch directories in
// their configured order, then the root, so patched files shadow the base.
func openSources(cfg config.AssetsConfig) (*assets.ChainSource, []*assets.DirectorySource, error) {
	roots := append(append([]string(nil), cfg.Patches...), cfg.Root)

	dirs := make([]*assets.DirectorySource, 0, len(roots))
	chain := make([]assets.Source, 0, len(roots))
	for _, root := range roots {
		ds, err := assets.NewDirectorySource(root, cfg.Watch)
		if err != nil {
			closeSources(dirs)
			return nil, nil, err
		}
		dirs = append(dirs, ds)
		chain = append(chain, ds)
	}
	return assets.NewChainSource(chain...), dirs, nil
}

func closeSources(dirs []*assets.DirectorySource) error {
	var err error
	for _, ds := range dirs {
		err = errors.Join(err, ds.Close())
	}
	return err
}

// archivePath turns a file on disk into an archive path by making it
// relative to the first source root containing it.
func archivePath(cfg config.AssetsConfig, file string) (string, bool) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", false
	}
	for _, root := range append(append([]string(nil), cfg.Patches...), cfg.Root) {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return assets.NormalizePath(filepath.ToSlash(rel)), true
	}
	return "", false
}
