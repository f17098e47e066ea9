// SPDX-License-Identifier: MPL-2.0

package platforms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

// ErrIE is the sentinel error wrapped by IE installer failures.
var ErrIE = errors.New("ie")

// ieArchitectures are built in this order.
var ieArchitectures = []string{"x86", "x64"}

// packageIE runs NSIS for each architecture in <root>/ie and renames the
// produced installers to <name>-<version>-<arch>.exe.
func (t *Tasks) packageIE(ctx context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	root := args.String(0)
	makensis := st.ToolConfig.GetString("ie.makensis")
	if makensis == "" {
		makensis = "makensis"
	}

	if _, err := t.runner.Run(ctx, extproc.Command{Args: []string{makensis, "-VERSION"}}); err != nil {
		return nil, &extproc.NotFoundError{Tool: "makensis", Hint: "make sure the 'makensis' executable is in your path"}
	}

	name := configString(st, "name", "Forge App")
	version := configString(st, "version", "0.1")
	dir := filepath.Join(root, "ie")

	for _, arch := range ieArchitectures {
		nsi := filepath.Join("dist", "setup-"+arch+".nsi")
		if _, err := t.runner.Run(ctx, extproc.Command{Args: []string{makensis, nsi}, Dir: dir}); err != nil {
			return nil, fmt.Errorf("%w: problem running %s IE build: %w", ErrIE, arch, err)
		}

		exes, err := filepath.Glob(filepath.Join(dir, "dist", "*.exe"))
		if err != nil {
			return nil, err
		}
		for _, exe := range exes {
			target := filepath.Join(dir, fmt.Sprintf("%s-%s-%s.exe", name, version, arch))
			st.Log.Debug("moving installer", "from", exe, "to", target)
			if err := os.Rename(exe, target); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

func configString(st *build.State, key, def string) string {
	if v, ok := st.Config[key].(string); ok {
		return v
	}
	return def
}
