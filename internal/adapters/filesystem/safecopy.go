package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrSourceMissing is returned by SafeCopy when the source file does not exist
var ErrSourceMissing = errors.New("source file does not exist")

// SafeCopy copies src into dst without ever overwriting distinct content.
// If dst exists with the same byte size as src the copy is considered done
// and dst is returned unchanged (size-only identity, a deliberate heuristic
// kept from the original workflow). Otherwise the first free candidate among
// dst, dst_dup1, dst_dup2, ... receives the bytes, with the suffix inserted
// before the extension. The chosen destination path is returned.
func SafeCopy(src, dst string) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	ext := filepath.Ext(dst)
	base := strings.TrimSuffix(dst, ext)
	candidate := dst
	for i := 1; ; i++ {
		info, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return "", err
		}
		if info.Size() == srcInfo.Size() {
			// Same size: treat as already copied.
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_dup%d%s", base, i, ext)
	}

	if err := copyFile(src, candidate, srcInfo); err != nil {
		return "", err
	}
	return candidate, nil
}

// copyFile writes src's bytes to dst via a temp name in the same directory,
// then renames into place and carries over the modification time. A failed
// transfer never leaves a partial file under the final name.
func copyFile(src, dst string, srcInfo os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	mtime := srcInfo.ModTime()
	return os.Chtimes(dst, mtime, mtime)
}
