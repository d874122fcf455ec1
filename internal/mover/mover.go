// Package mover relocates media files and directories into Plex library
// sections. Same-filesystem moves use an atomic rename; cross-filesystem
// moves copy (optionally sha256-verified) and delete the source only once
// the copy is known good, so a move either completes or leaves the source
// untouched.
package mover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"mvvid/internal/config"
	"mvvid/internal/fileutil"
	"mvvid/internal/library"
	"mvvid/internal/logging"
	"mvvid/internal/services"
)

// ErrDestinationExists tags already-present destinations so batch moves can
// warn and skip instead of aborting.
var ErrDestinationExists = errors.New("destination already exists")

// Mode records how a request was satisfied.
type Mode string

const (
	ModeRename Mode = "rename"
	ModeCopy   Mode = "copy"
)

// Request is one planned relocation, created per invocation and consumed
// immediately.
type Request struct {
	Source      string
	Section     library.Section
	Destination string
	IsDir       bool
	Size        int64
}

// Result describes a completed relocation.
type Result struct {
	Request
	Mode Mode
}

// Mover executes move requests.
type Mover struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a mover.
func New(cfg *config.Config, logger *slog.Logger) *Mover {
	return &Mover{cfg: cfg, logger: logging.WithComponent(logger, "mover")}
}

// Plan validates a source against a section and resolves its destination.
// A missing source fails here, before anything on disk is touched.
func (m *Mover) Plan(source string, section library.Section) (Request, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return Request{}, services.Wrap(services.ErrValidation, "move", "resolve path", source, err)
	}
	info, err := os.Lstat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Request{}, services.Wrap(services.ErrNotFound, "move", "stat source", abs, err)
		}
		return Request{}, services.Wrap(services.ErrValidation, "move", "stat source", abs, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return Request{}, services.Wrap(services.ErrValidation, "move", "stat source", fmt.Sprintf("%s is a symlink", abs), nil)
	}

	size := info.Size()
	if info.IsDir() {
		if size, err = fileutil.TreeSize(abs); err != nil {
			return Request{}, services.Wrap(services.ErrValidation, "move", "measure source", abs, err)
		}
	}

	return Request{
		Source:      abs,
		Section:     section,
		Destination: section.Destination(abs),
		IsDir:       info.IsDir(),
		Size:        size,
	}, nil
}

// Move executes a request. With keepSource the copy leg runs alone and the
// source stays in place.
func (m *Mover) Move(ctx context.Context, req Request, keepSource bool) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if _, err := os.Lstat(req.Destination); err == nil {
		return Result{}, services.Wrap(
			services.ErrValidation,
			"move",
			"check destination",
			req.Destination,
			ErrDestinationExists,
		)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Result{}, services.Wrap(services.ErrValidation, "move", "check destination", req.Destination, err)
	}

	if err := m.preflight(req); err != nil {
		return Result{}, err
	}

	mode := ModeCopy
	if !keepSource {
		var err error
		mode, err = m.relocate(req)
		if err != nil {
			return Result{}, err
		}
	} else if err := m.copyOnly(req); err != nil {
		return Result{}, err
	}

	m.applyOwnership(req.Destination)
	m.logger.Info("move completed",
		logging.String("source", req.Source),
		logging.String("destination", req.Destination),
		logging.String("section", req.Section.Name),
		logging.String("mode", string(mode)),
		logging.Int64("bytes", req.Size),
	)
	return Result{Request: req, Mode: mode}, nil
}

// preflight confirms the section directory exists and is writable. The
// section directories belong to the Plex server and are never created here.
func (m *Mover) preflight(req Request) error {
	destDir := filepath.Dir(req.Destination)
	info, err := os.Stat(destDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(
				services.ErrConfiguration,
				"move",
				"check section directory",
				fmt.Sprintf("%s does not exist; section directories are managed by the Plex server", destDir),
				nil,
			)
		}
		return services.Wrap(services.ErrValidation, "move", "check section directory", destDir, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "move", "check section directory", fmt.Sprintf("%s is not a directory", destDir), nil)
	}
	if err := unix.Access(destDir, unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrPermission, "move", "check section directory", destDir, err)
	}
	return nil
}

func (m *Mover) relocate(req Request) (Mode, error) {
	// Known cross-device requests skip the rename that would only fail
	// with EXDEV. An inconclusive device check falls through to rename.
	if same, err := fileutil.SameDevice(req.Source, filepath.Dir(req.Destination)); err == nil && !same {
		return m.copyThenRemove(req)
	}

	err := os.Rename(req.Source, req.Destination)
	if err == nil {
		return ModeRename, nil
	}
	if !isCrossDevice(err) {
		if errors.Is(err, os.ErrPermission) {
			return "", services.Wrap(services.ErrPermission, "move", "rename", req.Source, err)
		}
		return "", services.Wrap(services.ErrValidation, "move", "rename", req.Source, err)
	}

	// EXDEV despite the preceding device check (bind mounts etc).
	return m.copyThenRemove(req)
}

func (m *Mover) copyThenRemove(req Request) (Mode, error) {
	m.logger.Debug("crossing filesystems, falling back to copy",
		logging.String("source", req.Source),
		logging.Bool("verify", m.cfg.Mover.Verify),
	)
	if err := m.copyOnly(req); err != nil {
		return "", err
	}
	if err := os.RemoveAll(req.Source); err != nil {
		// The copy is verified at this point; surface the leftover rather
		// than deleting the destination.
		return "", services.Wrap(
			services.ErrPermission,
			"move",
			"remove source",
			fmt.Sprintf("copied to %s but could not remove %s", req.Destination, req.Source),
			err,
		)
	}
	return ModeCopy, nil
}

func (m *Mover) copyOnly(req Request) error {
	var err error
	if req.IsDir {
		err = fileutil.CopyTree(req.Source, req.Destination, m.cfg.Mover.Verify)
	} else if m.cfg.Mover.Verify {
		err = fileutil.CopyFileVerified(req.Source, req.Destination)
	} else {
		err = fileutil.CopyFile(req.Source, req.Destination)
	}
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return services.Wrap(services.ErrPermission, "move", "copy", req.Source, err)
		}
		return services.Wrap(services.ErrValidation, "move", "copy", req.Source, err)
	}
	return nil
}

// applyOwnership hands the destination over to the configured owner so the
// Plex server process can read it. Failures are logged, not fatal: the move
// itself has already completed.
func (m *Mover) applyOwnership(path string) {
	owner := m.cfg.Mover.Owner
	group := m.cfg.Mover.Group
	if owner == "" && group == "" {
		return
	}

	uid, gid, err := resolveIDs(owner, group)
	if err != nil {
		m.logger.Warn("ownership lookup failed; files keep current owner", logging.Error(err))
		return
	}

	chown := func(p string) {
		if err := os.Chown(p, uid, gid); err != nil {
			m.logger.Warn("chown failed", logging.String("path", p), logging.Error(err))
		}
	}
	if entries, err := os.ReadDir(path); err == nil {
		for _, entry := range entries {
			chown(filepath.Join(path, entry.Name()))
		}
	}
	chown(path)
}

func resolveIDs(owner, group string) (int, int, error) {
	uid, gid := -1, -1
	if owner != "" {
		u, err := user.Lookup(owner)
		if err != nil {
			return 0, 0, fmt.Errorf("lookup user %q: %w", owner, err)
		}
		if uid, err = strconv.Atoi(u.Uid); err != nil {
			return 0, 0, fmt.Errorf("parse uid for %q: %w", owner, err)
		}
	}
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			return 0, 0, fmt.Errorf("lookup group %q: %w", group, err)
		}
		if gid, err = strconv.Atoi(g.Gid); err != nil {
			return 0, 0, fmt.Errorf("parse gid for %q: %w", group, err)
		}
	}
	return uid, gid, nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return errors.Is(err, syscall.EXDEV)
}
