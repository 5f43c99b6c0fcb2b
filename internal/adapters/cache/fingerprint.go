package cache

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"isobinder/internal/domain"
)

// FolderFingerprint digests the candidate source files of a folder: for each
// file, in sorted name order, the name, size and full byte content. Equal
// fingerprints across runs mean the merged output is already up to date.
// The merged output and the sidecar itself are the caller's responsibility
// to exclude from names.
func FolderFingerprint(folderPath string, names []string) (domain.Fingerprint, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	d := domain.NewDigest()
	for _, name := range sorted {
		path := filepath.Join(folderPath, name)
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		d.WriteString(name)
		d.WriteString(strconv.FormatInt(info.Size(), 10))

		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(d, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	return d.Sum(), nil
}
