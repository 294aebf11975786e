package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
	cgio "github.com/matzehuels/costgraph/pkg/io"
)

// document returns the document path commands operate on.
func (c *CLI) document() string {
	if c.docPath == "" {
		return cgio.DefaultFilename
	}
	return c.docPath
}

// openDocument loads the document at path into a fresh controller. Repairs
// made while loading are logged as warnings by the controller.
func (c *CLI) openDocument(ctx context.Context, path string) (*controller.Controller, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s (create it with '%s new')", path, appName)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ctrl := controller.New(c.Logger)
	if _, err := ctrl.Load(ctx, f, cgio.FormatFromPath(path)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ctrl, nil
}

// newDocument creates a controller holding a single root node and the
// configured rates.
func (c *CLI) newDocument() (*controller.Controller, error) {
	rates, err := c.config().RateTable()
	if err != nil {
		return nil, err
	}
	return controller.NewWithState(graph.New(), rates, c.Logger), nil
}

// saveDocument writes the controller state to path. The file is replaced
// atomically so an interrupted save never leaves a truncated document.
func saveDocument(ctx context.Context, ctrl *controller.Controller, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := ctrl.Save(ctx, tmp, cgio.FormatFromPath(path)); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// mutate loads the document, applies fn and saves the result.
func (c *CLI) mutate(ctx context.Context, fn func(*controller.Controller) error) error {
	path := c.document()
	ctrl, err := c.openDocument(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(ctrl); err != nil {
		return err
	}
	return saveDocument(ctx, ctrl, path)
}
