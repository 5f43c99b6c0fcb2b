package stages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"isobinder/internal/adapters/cache"
	"isobinder/internal/application"
	"isobinder/internal/domain"
	"isobinder/internal/ports"
	"isobinder/internal/runlog"
)

// fakeEngine treats a file's content as a document whose pages are the
// "|"-separated segments, so stages exercise real files on disk without a
// real PDF library.
type fakeEngine struct {
	mergeCalls int
	failMerge  bool
}

func (e *fakeEngine) pagesOf(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "|"), nil
}

func (e *fakeEngine) Open(path string) (ports.Document, error) {
	pages, err := e.pagesOf(path)
	if err != nil {
		return nil, err
	}
	return &fakeDoc{pages: pages}, nil
}

func (e *fakeEngine) PageCount(path string) (int, error) {
	pages, err := e.pagesOf(path)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

func (e *fakeEngine) ExtractPage(src string, page int, outPath string) error {
	pages, err := e.pagesOf(src)
	if err != nil {
		return err
	}
	if page < 1 || page > len(pages) {
		return fmt.Errorf("page %d out of range", page)
	}
	return os.WriteFile(outPath, []byte(pages[page-1]), 0644)
}

func (e *fakeEngine) Merge(parts []ports.PageSelection, outPath string) error {
	e.mergeCalls++
	if e.failMerge {
		return errors.New("merge failed")
	}
	var out []string
	for _, part := range parts {
		pages, err := e.pagesOf(part.Path)
		if err != nil {
			return err
		}
		for _, n := range part.Pages {
			out = append(out, pages[n-1])
		}
	}
	return os.WriteFile(outPath, []byte(strings.Join(out, "|")), 0644)
}

type fakeDoc struct {
	pages []string
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) PageFingerprint(page int) (domain.Fingerprint, error) {
	if page < 1 || page > len(d.pages) {
		return "", fmt.Errorf("page %d out of range", page)
	}
	return domain.FingerprintBytes([]byte(d.pages[page-1])), nil
}

func (d *fakeDoc) Close() error { return nil }

type fakeTable struct {
	records []domain.Record
}

func (t *fakeTable) Load() ([]domain.Record, error) {
	return append([]domain.Record(nil), t.records...), nil
}

func (t *fakeTable) Save(records []domain.Record) error {
	t.records = append([]domain.Record(nil), records...)
	return nil
}

type fakeCandidates struct {
	tables map[string][]domain.Candidate
}

func (c *fakeCandidates) Load(folderPath string) ([]domain.Candidate, bool, error) {
	rows, found := c.tables[folderPath]
	return append([]domain.Candidate(nil), rows...), found, nil
}

func (c *fakeCandidates) Save(folderPath string, rows []domain.Candidate) error {
	c.tables[folderPath] = append([]domain.Candidate(nil), rows...)
	return nil
}

type fakeLocator struct {
	byIso map[string]string
}

func (l *fakeLocator) Locate(isoNo string) (string, error) {
	if path, ok := l.byIso[isoNo]; ok {
		return path, nil
	}
	return "", &application.LookupError{IsoNo: isoNo}
}

type fakeMaster struct {
	pages map[string][]int
}

func (m *fakeMaster) PagesFor(isoKey string) []int {
	return append([]int(nil), m.pages[isoKey]...)
}

type fixture struct {
	rt      *Runtime
	engine  *fakeEngine
	table   *fakeTable
	cands   *fakeCandidates
	locator *fakeLocator
	master  *fakeMaster
	server  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine:  &fakeEngine{},
		table:   &fakeTable{},
		cands:   &fakeCandidates{tables: make(map[string][]domain.Candidate)},
		locator: &fakeLocator{byIso: make(map[string]string)},
		master:  &fakeMaster{pages: make(map[string][]int)},
		server:  t.TempDir(),
	}
	masterPDF := filepath.Join(t.TempDir(), "master.pdf")
	writeFile(t, masterPDF, "M1|M2|M3")

	f.rt = &Runtime{
		Dest:       t.TempDir(),
		MasterPDF:  masterPDF,
		Tracker:    f.table,
		Candidates: f.cands,
		Locator:    f.locator,
		Docs:       f.engine,
		Cache:      cache.NewSidecar(),
		Master:     f.master,
		Logs:       runlog.Discard(),
		Summary:    &domain.RunSummary{},
		Now:        func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) },
	}
	return f
}

// serverFile puts a source document on the fake server store and registers
// it with the locator
func (f *fixture) serverFile(t *testing.T, isoNo, name, content string) {
	t.Helper()
	path := filepath.Join(f.server, name)
	writeFile(t, path, content)
	f.locator.byIso[isoNo] = path
}

func (f *fixture) folder(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(f.rt.Dest, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	for file, content := range files {
		writeFile(t, filepath.Join(path, file), content)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestReconcileRenamesFolderWhenKeyChanges(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{LoopNo: "L2", SystemNo: "S1", HistoryName: "L1_S1"},
	}
	f.folder(t, "L1_S1", map[string]string{"(ISO-1-A).pdf": "P1"})

	if err := NewReconcile(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if exists(filepath.Join(f.rt.Dest, "L1_S1")) {
		t.Error("old folder still present after rename")
	}
	if !exists(filepath.Join(f.rt.Dest, "L2_S1", "(ISO-1-A).pdf")) {
		t.Error("renamed folder does not hold the old contents")
	}
	if got := f.table.records[0].HistoryName; got != "L2_S1" {
		t.Errorf("HistoryName = %q, want %q", got, "L2_S1")
	}
}

func TestReconcileMergesConvergingFolders(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{LoopNo: "L2", SystemNo: "S1", HistoryName: "L1_S1"},
	}
	f.folder(t, "L1_S1", map[string]string{"a.pdf": "old"})
	f.folder(t, "L2_S1", map[string]string{"b.pdf": "new"})

	if err := NewReconcile(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	merged := filepath.Join(f.rt.Dest, "L2_S1")
	if !exists(filepath.Join(merged, "a.pdf")) || !exists(filepath.Join(merged, "b.pdf")) {
		t.Error("merged folder is missing files from one of the sources")
	}
	if exists(filepath.Join(f.rt.Dest, "L1_S1")) {
		t.Error("emptied source folder was not removed")
	}
	if len(f.rt.Summary.Issues) != 0 {
		t.Errorf("unexpected issues: %v", f.rt.Summary.Issues)
	}
}

func TestReconcileUnionsTwoConvergingHistories(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{LoopNo: "L2", SystemNo: "S1", HistoryName: "L1a_S1"},
		{LoopNo: "L2", SystemNo: "S1", HistoryName: "L1b_S1"},
	}
	f.folder(t, "L1a_S1", map[string]string{"a.pdf": "from a"})
	f.folder(t, "L1b_S1", map[string]string{"b.pdf": "from b"})

	if err := NewReconcile(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	merged := filepath.Join(f.rt.Dest, "L2_S1")
	if !exists(filepath.Join(merged, "a.pdf")) || !exists(filepath.Join(merged, "b.pdf")) {
		t.Error("union folder is missing files from one of the histories")
	}
	for _, old := range []string{"L1a_S1", "L1b_S1"} {
		if exists(filepath.Join(f.rt.Dest, old)) {
			t.Errorf("history folder %s left behind", old)
		}
	}
	for i, r := range f.table.records {
		if r.HistoryName != "L2_S1" {
			t.Errorf("record %d HistoryName = %q, want %q", i, r.HistoryName, "L2_S1")
		}
	}
	if len(f.rt.Summary.Issues) != 0 {
		t.Errorf("unexpected issues: %v", f.rt.Summary.Issues)
	}
}

func TestReconcileBatchUpdatesRowsSharingHistory(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{LoopNo: "L2", SystemNo: "S1", HistoryName: "L1_S1"},
		{LoopNo: "L2", SystemNo: "S1", HistoryName: "L1_S1"},
	}
	f.folder(t, "L1_S1", nil)

	if err := NewReconcile(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	for i, r := range f.table.records {
		if r.HistoryName != "L2_S1" {
			t.Errorf("record %d HistoryName = %q, want %q", i, r.HistoryName, "L2_S1")
		}
	}
}

func TestReconcileFetchesSource(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{IsoNo: "ISO-1234", LoopNo: "L1", SystemNo: "S1"},
	}
	f.serverFile(t, "ISO-1234", "(ISO-1234-A).pdf", "P1|P2")

	if err := NewReconcile(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := readFile(t, filepath.Join(f.rt.Dest, "L1_S1", "(ISO-1234-A).pdf"))
	if got != "P1|P2" {
		t.Errorf("fetched content = %q", got)
	}
	if f.table.records[0].Status != domain.StatusOK {
		t.Errorf("Status = %q, want OK", f.table.records[0].Status)
	}
	if f.rt.Summary.OK != 1 {
		t.Errorf("Summary.OK = %d, want 1", f.rt.Summary.OK)
	}
}

func TestReconcileMarksMissingAndKeepsGoing(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{IsoNo: "ISO-9999", LoopNo: "L1", SystemNo: "S1"},
		{IsoNo: "ISO-1234", LoopNo: "L2", SystemNo: "S1"},
	}
	f.serverFile(t, "ISO-1234", "(ISO-1234-A).pdf", "P1")

	if err := NewReconcile(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if f.table.records[0].Status != domain.StatusMissing {
		t.Errorf("missing record Status = %q", f.table.records[0].Status)
	}
	if !exists(filepath.Join(f.rt.Dest, "L1_S1")) {
		t.Error("folder for missing record was not created")
	}
	if f.table.records[1].Status != domain.StatusOK {
		t.Errorf("second record Status = %q, isolation broken", f.table.records[1].Status)
	}
	if f.rt.Summary.Missing != 1 || f.rt.Summary.OK != 1 {
		t.Errorf("Summary OK/Missing = %d/%d, want 1/1", f.rt.Summary.OK, f.rt.Summary.Missing)
	}
}

func TestCatalogAppendsOnlyNewKeys(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{
		"(ISO-1-A).pdf": "P1",
		"(ISO-2-B).pdf": "P2",
	})
	f.master.pages["ISO-1"] = []int{1, 3}
	f.cands.tables[path] = []domain.Candidate{{IsoKey: "ISO-2", Status: domain.StatusOK}}

	if err := NewCatalog(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	rows := f.cands.tables[path]
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].IsoKey != "ISO-2" || rows[0].Status != domain.StatusOK {
		t.Errorf("existing row not preserved: %+v", rows[0])
	}
	if rows[1].IsoKey != "ISO-1" || len(rows[1].Pages) != 2 {
		t.Errorf("appended row = %+v", rows[1])
	}
}

func TestCatalogIgnoresFolderWithoutSourcesOrTable(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{"notes.txt": "x"})

	if err := NewCatalog(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, found := f.cands.tables[path]; found {
		t.Error("candidate table created for folder with no sources")
	}
}

func TestExtractWritesReferencedPages(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", nil)
	f.cands.tables[path] = []domain.Candidate{{IsoKey: "ISO-1", Pages: []int{1, 3}}}

	if err := NewExtract(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(path, "1.pdf")); got != "M1" {
		t.Errorf("1.pdf = %q", got)
	}
	if got := readFile(t, filepath.Join(path, "3.pdf")); got != "M3" {
		t.Errorf("3.pdf = %q", got)
	}
}

func TestExtractSkipsExistingAndOutOfRange(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{"1.pdf": "KEEP"})
	f.cands.tables[path] = []domain.Candidate{{IsoKey: "ISO-1", Pages: []int{1, 9}}}

	if err := NewExtract(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(path, "1.pdf")); got != "KEEP" {
		t.Errorf("existing extract overwritten: %q", got)
	}
	if exists(filepath.Join(path, "9.pdf")) {
		t.Error("out-of-range page was written")
	}
}

func TestBackupDuplicatesPagesAndSources(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{
		"1.pdf":         "M1",
		"(ISO-1-A).pdf": "P1",
		"Combined.pdf":  "old",
		"stray.pdf":     "dropped in by hand",
	})

	if err := NewBackup(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(path, "1_FRI.pdf")); got != "M1" {
		t.Errorf("page backup = %q", got)
	}
	if got := readFile(t, filepath.Join(path, "(ISO-1-A)_FRI.pdf")); got != "P1" {
		t.Errorf("source backup = %q", got)
	}
	if exists(filepath.Join(path, "Combined_FRI.pdf")) {
		t.Error("merged output must not be backed up")
	}
	if exists(filepath.Join(path, "stray_FRI.pdf")) {
		t.Error("stray file was backed up; only pages and sources participate")
	}
}

func TestBackupIsIdempotent(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{"1.pdf": "M1"})

	for i := 0; i < 2; i++ {
		if err := NewBackup(f.rt).Execute(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if exists(filepath.Join(path, "1_FRI_FRI.pdf")) {
		t.Error("backup of a backup was created")
	}
	if exists(filepath.Join(path, "1_FRI_dup1.pdf")) {
		t.Error("unchanged backup was duplicated")
	}
}

func TestCleanupRemovesUnreferencedSources(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{
		"(ISO-1-A).pdf":     "keep",
		"(ISO-2-B).pdf":     "drop",
		"(ISO-2-B)_FRI.pdf": "backup",
		"1.pdf":             "page",
	})
	f.cands.tables[path] = []domain.Candidate{{IsoKey: "ISO-1"}}

	if err := NewCleanup(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !exists(filepath.Join(path, "(ISO-1-A).pdf")) {
		t.Error("referenced source removed")
	}
	if exists(filepath.Join(path, "(ISO-2-B).pdf")) {
		t.Error("unreferenced source kept")
	}
	if !exists(filepath.Join(path, "(ISO-2-B)_FRI.pdf")) || !exists(filepath.Join(path, "1.pdf")) {
		t.Error("backup or page extract was touched")
	}
}

func TestMergeDeduplicatesAcrossPrecedence(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{
		"1.pdf":           "P1",
		"(A-1-1).pdf":     "P1|P2",
		"(A-1-1)_FRI.pdf": "P1",
		"notes.txt":       "ignored",
	})
	// a stale output from an earlier run must be replaced, not appended to
	writeFile(t, filepath.Join(path, domain.MergedFileName), "stale")

	if err := NewMerge(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(path, domain.MergedFileName)); got != "P1|P2" {
		t.Errorf("Combined = %q, want %q", got, "P1|P2")
	}
	if f.engine.mergeCalls != 1 {
		t.Errorf("mergeCalls = %d, want 1", f.engine.mergeCalls)
	}
}

func TestMergeCacheHitSkipsRemerge(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{"1.pdf": "P1"})

	for i := 0; i < 2; i++ {
		if err := NewMerge(f.rt).Execute(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if f.engine.mergeCalls != 1 {
		t.Errorf("mergeCalls = %d, want 1 (second run should hit the cache)", f.engine.mergeCalls)
	}
	if !exists(filepath.Join(path, domain.CacheSidecarName)) {
		t.Error("cache sidecar missing after merge")
	}
}

func TestMergeRemergesWhenSourceChanges(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{"1.pdf": "P1|P2"})

	if err := NewMerge(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Same size, different bytes: the fingerprint covers content, not mtime.
	writeFile(t, filepath.Join(path, "1.pdf"), "P1|P3")
	if err := NewMerge(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if f.engine.mergeCalls != 2 {
		t.Errorf("mergeCalls = %d, want 2", f.engine.mergeCalls)
	}
	if got := readFile(t, filepath.Join(path, domain.MergedFileName)); got != "P1|P3" {
		t.Errorf("Combined = %q, want %q", got, "P1|P3")
	}
}

func TestMergeFailureLeavesNoCacheEntry(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{"1.pdf": "P1"})

	f.engine.failMerge = true
	if err := NewMerge(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if exists(filepath.Join(path, domain.CacheSidecarName)) {
		t.Fatal("failed merge must not record a cache entry")
	}
	if exists(filepath.Join(path, domain.MergedFileName)) {
		t.Fatal("failed merge must not leave an output behind")
	}

	f.engine.failMerge = false
	if err := NewMerge(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(path, domain.MergedFileName)); got != "P1" {
		t.Errorf("retry after failure produced %q", got)
	}
}

func TestVerifyUpdatesCandidateStatuses(t *testing.T) {
	f := newFixture(t)
	path := f.folder(t, "L1_S1", map[string]string{"(ISO-1-A).pdf": "P1"})
	f.cands.tables[path] = []domain.Candidate{
		{IsoKey: "ISO-1"},
		{IsoKey: "ISO-2", Status: domain.StatusOK},
	}

	if err := NewVerify(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	rows := f.cands.tables[path]
	if rows[0].Status != domain.StatusOK {
		t.Errorf("present key Status = %q", rows[0].Status)
	}
	if rows[1].Status != domain.StatusMissing {
		t.Errorf("absent key Status = %q", rows[1].Status)
	}
}

func TestVerifyEmptyFolders(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{LoopNo: "L1", SystemNo: "S1", FolderName: "L1_S1"},
	}
	f.folder(t, "L1_S1", nil)
	f.folder(t, "orphan", nil)

	if err := NewVerify(f.rt).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !exists(filepath.Join(f.rt.Dest, "L1_S1")) {
		t.Error("tracked empty folder was removed")
	}
	if len(f.rt.Summary.Issues) != 1 {
		t.Errorf("issues = %v, want one for the tracked empty folder", f.rt.Summary.Issues)
	}
	if exists(filepath.Join(f.rt.Dest, "orphan")) {
		t.Error("orphaned empty folder was kept")
	}
}

func TestPipelinePreflightRejectsBadSetup(t *testing.T) {
	f := newFixture(t)
	f.rt.MasterPDF = filepath.Join(f.rt.Dest, "no-such-master.pdf")

	_, err := NewPipeline(f.rt).Run(context.Background())
	if !errors.Is(err, application.ErrSetup) {
		t.Fatalf("err = %v, want setup error", err)
	}

	f = newFixture(t)
	f.rt.Dest = filepath.Join(f.rt.Dest, "missing")
	if _, err := NewPipeline(f.rt).Run(context.Background()); !errors.Is(err, application.ErrSetup) {
		t.Fatalf("err = %v, want setup error", err)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.table.records = []domain.Record{
		{IsoNo: "ISO-1234", LoopNo: "L1", SystemNo: "S1"},
	}
	f.serverFile(t, "ISO-1234", "(ISO-1234-A).pdf", "P9")
	f.master.pages["ISO-1234"] = []int{1}

	summary, err := NewPipeline(f.rt).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(f.rt.Dest, "L1_S1")
	if got := readFile(t, filepath.Join(path, "1.pdf")); got != "M1" {
		t.Errorf("extracted page = %q", got)
	}
	if got := readFile(t, filepath.Join(path, domain.MergedFileName)); got != "M1|P9" {
		t.Errorf("Combined = %q, want %q", got, "M1|P9")
	}
	if !exists(filepath.Join(path, "(ISO-1234-A)_FRI.pdf")) {
		t.Error("source backup missing")
	}
	if summary.OK != 1 || summary.Missing != 0 {
		t.Errorf("summary OK/Missing = %d/%d", summary.OK, summary.Missing)
	}

	// A rerun with nothing changed must not rebuild the merged output.
	if _, err := NewPipeline(f.rt).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.engine.mergeCalls != 1 {
		t.Errorf("mergeCalls = %d after rerun, want 1", f.engine.mergeCalls)
	}
}
