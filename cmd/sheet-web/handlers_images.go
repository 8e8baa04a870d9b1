package main

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"

	"github.com/filmstriplab/filmstrip/internal/imaging"
)

// GET /api/images?folder=<name>
//
// The default folder lists bare filenames resolvable by a frame's src;
// any other folder is a subtree of the gallery root and lists paths
// relative to that subtree. An absent directory is an empty listing, not
// an error: the editor always renders a gallery, possibly empty.
func (s *server) handleImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	folder := r.URL.Query().Get("folder")
	if containsPathTraversal(folder) {
		httpError(w, http.StatusBadRequest, "invalid folder")
		return
	}

	if folder == "" || folder == "default" {
		respondJSON(w, http.StatusOK, listFlat(s.lib.PhotoDir()))
		return
	}

	if s.galleryRoot == "" {
		respondJSON(w, http.StatusOK, []string{})
		return
	}
	respondJSON(w, http.StatusOK, listTree(filepath.Join(s.galleryRoot, folder)))
}

// listFlat returns the image filenames directly inside dir.
func listFlat(dir string) []string {
	names := []string{}
	if dir == "" {
		return names
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return names
	}
	for _, de := range entries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		if isImageName(de.Name()) {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)
	return names
}

// listTree walks root recursively and returns root-relative image paths.
func listTree(root string) []string {
	paths := []string{}
	if _, err := os.Stat(root); err != nil {
		return paths
	}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			name := filepath.Base(osPathname)
			if strings.HasPrefix(name, ".") {
				if de.IsDir() && osPathname != root {
					return filepath.SkipDir
				}
				return nil
			}
			if de.IsDir() || !isImageName(name) {
				return nil
			}
			rel, err := filepath.Rel(root, osPathname)
			if err != nil {
				return nil
			}
			paths = append(paths, filepath.ToSlash(rel))
			return nil
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("Gallery walk failed")
	}
	sort.Strings(paths)
	return paths
}

func isImageName(name string) bool {
	// Derived thumbnails sit next to their originals; listing both would
	// double every photo.
	if strings.HasSuffix(name, ".thumb.webp") {
		return false
	}
	_, ok := imaging.SupportedImageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
