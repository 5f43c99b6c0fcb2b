// Package pdf implements the document engine on top of pdfcpu. It is the
// only package that touches PDF internals; everything above it works with
// opaque page counts and fingerprints.
package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"isobinder/internal/domain"
	"isobinder/internal/ports"
)

// Engine is the pdfcpu-backed ports.DocumentEngine
type Engine struct {
	conf *model.Configuration
}

var _ ports.DocumentEngine = (*Engine)(nil)

func NewEngine() *Engine {
	conf := model.NewDefaultConfiguration()
	// Scanned field documents are frequently produced by sloppy writers;
	// strict validation would reject files that render fine.
	conf.ValidationMode = model.ValidationRelaxed
	return &Engine{conf: conf}
}

func (e *Engine) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count of %s: %w", filepath.Base(path), err)
	}
	return n, nil
}

func (e *Engine) Open(path string) (ports.Document, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return &document{ctx: ctx}, nil
}

// ExtractPage writes one page of src as a standalone single-page document
func (e *Engine) ExtractPage(src string, page int, outPath string) error {
	if err := api.TrimFile(src, outPath, []string{strconv.Itoa(page)}, e.conf); err != nil {
		return fmt.Errorf("extract page %d of %s: %w", page, filepath.Base(src), err)
	}
	return nil
}

// Merge assembles the selected pages, in selection order, into outPath.
// Each selection is trimmed to its surviving pages in a scratch directory
// first, then the trimmed parts are concatenated.
func (e *Engine) Merge(parts []ports.PageSelection, outPath string) error {
	scratch, err := os.MkdirTemp(filepath.Dir(outPath), ".merge-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	inFiles := make([]string, 0, len(parts))
	for i, part := range parts {
		pages := make([]string, len(part.Pages))
		for j, p := range part.Pages {
			pages[j] = strconv.Itoa(p)
		}
		trimmed := filepath.Join(scratch, fmt.Sprintf("part%03d.pdf", i))
		if err := api.TrimFile(part.Path, trimmed, pages, e.conf); err != nil {
			return fmt.Errorf("trim %s: %w", filepath.Base(part.Path), err)
		}
		inFiles = append(inFiles, trimmed)
	}
	if err := api.MergeCreateFile(inFiles, outPath, false, e.conf); err != nil {
		return fmt.Errorf("merge into %s: %w", filepath.Base(outPath), err)
	}
	return nil
}

// document wraps a parsed pdfcpu context for page-level fingerprinting
type document struct {
	ctx *model.Context
}

func (d *document) PageCount() int {
	return d.ctx.PageCount
}

// PageFingerprint digests the page's decoded content streams. Byte-identical
// page content yields the same fingerprint regardless of which file or
// position it appears in; container-level noise (object numbering, xref
// layout, metadata) does not affect it.
func (d *document) PageFingerprint(page int) (domain.Fingerprint, error) {
	r, err := pdfcpu.ExtractPageContent(d.ctx, page)
	if err != nil {
		return "", fmt.Errorf("page %d content: %w", page, err)
	}
	digest := domain.NewDigest()
	if r != nil {
		if _, err := io.Copy(digest, r); err != nil {
			return "", err
		}
	}
	return digest.Sum(), nil
}

func (d *document) Close() error {
	d.ctx = nil
	return nil
}
