package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/motioneval/bvh"
)

// ConvertAction converts a BVH file, or every BVH file of a directory, to a target hierarchy.
func ConvertAction(c *cli.Context) error {
	if err := requireArgs(c, 3); err != nil {
		return err
	}
	input, targetPath, output := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)
	deleteColumns := c.IntSlice(deleteColumnsFlag)

	target, err := bvh.ParseFile(targetPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(input)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if err := convertFile(input, output, target, deleteColumns); err != nil {
			return err
		}
		printf(c.App.Writer, "wrote %s", output)
		return nil
	}

	if err := os.MkdirAll(output, 0o750); err != nil {
		return errors.Wrapf(err, "cannot create %s", output)
	}
	entries, err := os.ReadDir(input)
	if err != nil {
		return err
	}
	var errs error
	converted := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(entry.Name()), ".bvh") {
			continue
		}
		src, dst := filepath.Join(input, entry.Name()), filepath.Join(output, entry.Name())
		if err := convertFile(src, dst, target, deleteColumns); err != nil {
			warningf(c.App.ErrWriter, "skipping %s: %v", entry.Name(), err)
			errs = multierr.Append(errs, err)
			continue
		}
		converted++
	}
	printf(c.App.Writer, "converted %d files into %s", converted, output)
	return errs
}

func convertFile(src, dst string, target *bvh.File, deleteColumns []int) error {
	in, err := bvh.ParseFile(src)
	if err != nil {
		return err
	}
	out, err := bvh.Convert(in, target, deleteColumns)
	if err != nil {
		return errors.Wrapf(err, "cannot convert %s", src)
	}
	return out.WriteFile(dst)
}
