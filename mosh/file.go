package mosh

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4"
	"github.com/ugparu/gomosh/utils/logger"
)

const (
	tempPattern = ".gomosh-*.tmp"
	outputMode  = fs.FileMode(0o644)
)

// File remuxes the mp4 file src into dst. The destination is only created
// once every source track is known to be supported. With opts.Atomic the
// output is written to a temporary file next to dst and renamed into place on
// success; otherwise an existing dst is removed and written directly.
func File(ctx context.Context, src, dst string, opts Options) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return &gomosh.IOError{Op: "open source", Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &gomosh.IOError{Op: "stat source", Err: err}
	}

	r, err := mp4.NewReader(in, info.Size())
	if err != nil {
		return err
	}

	var out *os.File
	defer func() {
		if out == nil {
			return
		}
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &gomosh.IOError{Op: "close destination", Err: cerr}
		}
		if err != nil && opts.Atomic {
			_ = os.Remove(out.Name())
			return
		}
		if err == nil && opts.Atomic {
			if rerr := os.Rename(out.Name(), dst); rerr != nil {
				_ = os.Remove(out.Name())
				err = &gomosh.IOError{Op: "rename destination", Err: rerr}
			}
		}
	}()

	open := func(m gomosh.Metadata) (gomosh.SampleWriter, error) {
		var oerr error
		if out, oerr = createOutput(dst, opts.Atomic); oerr != nil {
			return nil, oerr
		}
		return mp4.NewWriter(out, m)
	}

	logger.Infof("mosh", "remuxing %s into %s, shuffle start fraction %.3f", src, dst, opts.Fraction)
	return Remux(ctx, r, open, opts)
}

func createOutput(dst string, atomic bool) (*os.File, error) {
	if !atomic {
		if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &gomosh.IOError{Op: "remove destination", Err: err}
		}
		f, err := os.Create(dst)
		if err != nil {
			return nil, &gomosh.IOError{Op: "create destination", Err: err}
		}
		return f, nil
	}

	f, err := os.CreateTemp(filepath.Dir(dst), tempPattern)
	if err != nil {
		return nil, &gomosh.IOError{Op: "create destination", Err: err}
	}
	// The temporary file is owner-only; the result takes the mode of the
	// file it replaces, or outputMode for a new file.
	mode := outputMode
	if info, serr := os.Stat(dst); serr == nil {
		mode = info.Mode().Perm()
	}
	if err = f.Chmod(mode); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, &gomosh.IOError{Op: "chmod destination", Err: err}
	}
	return f, nil
}
