package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/zeebo/blake3"

	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

const codeWriteFailed = "OUTPUT_WRITE_FAILED"

var (
	// ErrRootRequired reports a save without an output directory.
	ErrRootRequired = errors.New("output: root directory is required")
	// ErrPathEscapesRoot reports an output path leaving the root directory.
	ErrPathEscapesRoot = errors.New("output: path escapes root directory")
)

// Options configures Save.
type Options struct {
	// Root is the directory output paths are relative to.
	Root string
	// DryRun computes the result without touching the filesystem.
	DryRun bool
	// Force rewrites files whose content is unchanged.
	Force  bool
	Logger interfaces.Logger
}

// SaveResult lists the output paths by outcome, in input order.
type SaveResult struct {
	Written   []string
	Unchanged []string
}

// fileWriter abstracts the filesystem for Save.
type fileWriter interface {
	EnsureDir(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, name string, data []byte) error
	Digest(ctx context.Context, name string) ([32]byte, bool, error)
}

func newFileWriter(dryRun bool) fileWriter {
	if dryRun {
		return dryRunWriter{}
	}
	return osWriter{}
}

// Save writes files below opts.Root, creating parent directories. Files whose
// blake3 digest matches the existing file are left untouched unless Force is
// set.
func Save(ctx context.Context, files []interfaces.OutputFile, opts Options) (SaveResult, error) {
	return save(ctx, files, opts, newFileWriter(opts.DryRun))
}

func save(ctx context.Context, files []interfaces.OutputFile, opts Options, writer fileWriter) (SaveResult, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return SaveResult{}, writeFailure("", ErrRootRequired)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	result := SaveResult{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		target, err := resolve(opts.Root, file.Path)
		if err != nil {
			return result, writeFailure(file.Path, err)
		}
		fileLogger := logging.WithOutputContext(logger, file.Path)

		data := []byte(file.Text)
		if !opts.Force {
			existing, ok, err := writer.Digest(ctx, target)
			if err != nil {
				return result, writeFailure(file.Path, err)
			}
			if ok && existing == blake3.Sum256(data) {
				fileLogger.Debug("output.unchanged")
				result.Unchanged = append(result.Unchanged, file.Path)
				continue
			}
		}

		if err := writer.EnsureDir(ctx, filepath.Dir(target)); err != nil {
			return result, writeFailure(file.Path, err)
		}
		if err := writer.WriteFile(ctx, target, data); err != nil {
			return result, writeFailure(file.Path, err)
		}
		fileLogger.Debug("output.written", "bytes", len(data), "dry_run", opts.DryRun)
		result.Written = append(result.Written, file.Path)
	}

	logger.Info("output.saved",
		"root", opts.Root,
		"written", len(result.Written),
		"unchanged", len(result.Unchanged),
		"dry_run", opts.DryRun,
	)
	return result, nil
}

// resolve joins a slash separated output path onto root, refusing paths
// that leave it.
func resolve(root, name string) (string, error) {
	clean := path.Clean(strings.TrimSpace(name))
	if clean == "." || clean == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, name)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

func writeFailure(name string, err error) error {
	message := "output write failed"
	if name != "" {
		message = fmt.Sprintf("output write failed for %s", name)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).
		WithTextCode(codeWriteFailed)
}

type osWriter struct{}

func (osWriter) EnsureDir(_ context.Context, dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (osWriter) WriteFile(_ context.Context, name string, data []byte) error {
	return os.WriteFile(name, data, 0o644)
}

func (osWriter) Digest(_ context.Context, name string) ([32]byte, bool, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return [32]byte{}, false, nil
	}
	if err != nil {
		return [32]byte{}, false, err
	}
	return blake3.Sum256(data), true, nil
}

// dryRunWriter reads digests from disk but never writes.
type dryRunWriter struct{}

func (dryRunWriter) EnsureDir(context.Context, string) error { return nil }

func (dryRunWriter) WriteFile(context.Context, string, []byte) error { return nil }

func (dryRunWriter) Digest(ctx context.Context, name string) ([32]byte, bool, error) {
	return osWriter{}.Digest(ctx, name)
}
