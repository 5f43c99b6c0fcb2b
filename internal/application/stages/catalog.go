package stages

import (
	"context"
	"errors"

	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/application"
	"isobinder/internal/domain"
)

// Catalog is stage 2: it derives each folder's candidate table from the
// source files present, attaching the master pages referenced for each new
// ISO key. Existing rows are preserved; the stage only appends.
type Catalog struct {
	rt *Runtime
}

func NewCatalog(rt *Runtime) *Catalog {
	return &Catalog{rt: rt}
}

const stageCatalog = "catalog"

func (c *Catalog) Execute(ctx context.Context) error {
	folders, err := c.rt.folders()
	if err != nil {
		return err
	}
	stats := c.rt.Summary.Stage(stageCatalog)

	for _, folder := range folders {
		if err := c.catalogFolder(folder); err != nil {
			c.rt.fail(stageCatalog, folder, err)
			continue
		}
		stats.Processed++
	}
	return ctx.Err()
}

func (c *Catalog) catalogFolder(folder string) error {
	path := c.rt.folderPath(folder)
	files, err := filesystem.ListFiles(path)
	if err != nil {
		return err
	}

	keys := make(map[string]bool)
	var ordered []string
	for _, name := range files {
		if domain.Classify(name) != domain.RoleSource {
			continue
		}
		key, ok := domain.IsoKeyOf(name)
		if !ok || keys[key] {
			continue
		}
		keys[key] = true
		ordered = append(ordered, key)
	}

	rows, found, err := c.rt.Candidates.Load(path)
	if err != nil {
		var se *application.SchemaError
		if errors.As(err, &se) && se.Kind == application.MissingColumn {
			// Unusable table: rebuild it from the folder contents.
			c.rt.Logs.Failure(stageCatalog, folder, err)
			rows = nil
		} else {
			// Value-level problem: the good rows were still returned.
			c.rt.Logs.Failure(stageCatalog, folder, err)
		}
	}
	if len(ordered) == 0 && !found {
		return nil
	}

	existing := make(map[string]bool, len(rows))
	for _, r := range rows {
		existing[r.IsoKey] = true
	}

	added := 0
	for _, key := range ordered {
		if existing[key] {
			continue
		}
		rows = append(rows, domain.Candidate{
			IsoKey: key,
			Pages:  c.rt.Master.PagesFor(key),
		})
		added++
	}
	if added == 0 && found && err == nil {
		return nil
	}

	if err := c.rt.Candidates.Save(path, rows); err != nil {
		return err
	}
	c.rt.Logs.Action.Info().Str("folder", folder).Int("added", added).Msg("candidate table updated")
	return nil
}
