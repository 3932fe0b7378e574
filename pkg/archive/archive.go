// Package archive implements the snapshot container format: a gzip-compressed
// tar stream whose first entry is a yaml manifest (schema tag), followed by
// the git metadata payload under the "git/" prefix. The payload is stored
// byte-for-byte in git's native on-disk object format so an extracted
// snapshot is indistinguishable from a real .git directory.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/logging"
)

// SchemaVersion is bumped when the container layout changes incompatibly
const SchemaVersion = 1

const (
	manifestName  = "manifest.yaml"
	payloadPrefix = "git/"
)

// Manifest identifies a snapshot and its provenance
type Manifest struct {
	SchemaVersion int       `yaml:"schema_version"`
	CreatedAt     time.Time `yaml:"created_at"`
	Branch        string    `yaml:"branch"`
	ToolVersion   string    `yaml:"tool_version"`
}

// Options control how a snapshot is packed
type Options struct {
	// Level is the gzip level: fast, default or max
	Level string

	// CopyLinks stores symlinks as links instead of following their targets
	CopyLinks bool
}

// gzipLevel maps the config level names onto gzip constants
func gzipLevel(level string) int {
	switch level {
	case "fast":
		return gzip.BestSpeed
	case "max":
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

// Pack archives the contents of srcDir (a .git directory) into a snapshot
// container with the given manifest
func Pack(srcDir string, manifest Manifest, opts Options) ([]byte, error) {
	log := logging.GetLogger("archive")
	manifest.SchemaVersion = SchemaVersion

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzipLevel(opts.Level))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "creating gzip writer")
	}
	tw := tar.NewWriter(gz)

	if err := writeManifest(tw, manifest); err != nil {
		return nil, err
	}

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		name := payloadPrefix + filepath.ToSlash(rel)

		isLink := info.Mode()&os.ModeSymlink != 0
		if isLink && !opts.CopyLinks {
			// Follow the link; a dangling target is skipped rather than
			// aborting the whole snapshot
			resolved, statErr := os.Stat(path)
			if statErr != nil {
				log.Warn().Str("path", path).Msg("Skipping dangling symlink")
				return nil
			}
			info = resolved
			isLink = false
		}

		var linkTarget string
		if isLink {
			linkTarget, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return err
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if _, err := io.Copy(tw, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSnapshotWrite, "archiving %s", srcDir)
	}

	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotWrite, "finalizing archive")
	}
	if err := gz.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotWrite, "finalizing compression")
	}

	log.Debug().Str("source", srcDir).Int("bytes", buf.Len()).Msg("Snapshot packed")
	return buf.Bytes(), nil
}

func writeManifest(tw *tar.Writer, manifest Manifest) error {
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "encoding manifest")
	}
	hdr := &tar.Header{
		Name:    manifestName,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: manifest.CreatedAt,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(err, errors.ErrSnapshotWrite, "writing manifest header")
	}
	if _, err := tw.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrSnapshotWrite, "writing manifest")
	}
	return nil
}

// Inspect validates the container and returns its manifest without
// extracting the payload
func Inspect(data []byte) (*Manifest, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "snapshot is not a valid gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	hdr, err := tr.Next()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "snapshot is not a valid tar stream")
	}
	if hdr.Name != manifestName {
		return nil, errors.Newf(errors.ErrSnapshotCorrupt, "snapshot missing manifest, found %q", hdr.Name)
	}

	raw, err := io.ReadAll(tr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "reading manifest")
	}
	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "decoding manifest")
	}
	if manifest.SchemaVersion > SchemaVersion {
		return nil, errors.Newf(errors.ErrSnapshotCorrupt,
			"snapshot schema version %d is newer than supported version %d",
			manifest.SchemaVersion, SchemaVersion)
	}
	return &manifest, nil
}

// Unpack extracts the payload of a snapshot container into destDir,
// creating it if needed
func Unpack(data []byte, destDir string) (*Manifest, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "snapshot is not a valid gzip stream")
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStageFailure, "creating %s", destDir)
	}

	var manifest *Manifest
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "reading snapshot")
		}

		if hdr.Name == manifestName {
			raw, err := io.ReadAll(tr)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "reading manifest")
			}
			var m Manifest
			if err := yaml.Unmarshal(raw, &m); err != nil {
				return nil, errors.Wrap(err, errors.ErrSnapshotCorrupt, "decoding manifest")
			}
			if m.SchemaVersion > SchemaVersion {
				return nil, errors.Newf(errors.ErrSnapshotCorrupt,
					"snapshot schema version %d is newer than supported version %d",
					m.SchemaVersion, SchemaVersion)
			}
			manifest = &m
			continue
		}

		if !strings.HasPrefix(hdr.Name, payloadPrefix) {
			return nil, errors.Newf(errors.ErrSnapshotCorrupt, "unexpected entry %q in snapshot", hdr.Name)
		}
		rel := strings.TrimPrefix(hdr.Name, payloadPrefix)
		if rel == "" {
			continue
		}
		target, err := safeJoin(destDir, rel)
		if err != nil {
			return nil, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrStageFailure, "creating directory %s", target)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, errors.Wrapf(err, errors.ErrStageFailure, "creating parent of %s", target)
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return nil, errors.Wrapf(err, errors.ErrStageFailure, "restoring symlink %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, errors.Wrapf(err, errors.ErrStageFailure, "creating parent of %s", target)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrStageFailure, "creating %s", target)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return nil, errors.Wrapf(err, errors.ErrStageFailure, "writing %s", target)
			}
			if err := f.Close(); err != nil {
				return nil, errors.Wrapf(err, errors.ErrStageFailure, "closing %s", target)
			}
		default:
			// Hard links and device nodes do not occur in git metadata
			return nil, errors.Newf(errors.ErrSnapshotCorrupt, "unsupported entry type %d for %q", hdr.Typeflag, hdr.Name)
		}
	}

	if manifest == nil {
		return nil, errors.New(errors.ErrSnapshotCorrupt, "snapshot missing manifest")
	}
	return manifest, nil
}

// safeJoin joins rel under root, rejecting traversal outside root
func safeJoin(root, rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", errors.Newf(errors.ErrSnapshotCorrupt, "snapshot entry escapes target directory: %s", rel)
	}
	return filepath.Join(root, cleaned), nil
}

// String renders a manifest for status output
func (m *Manifest) String() string {
	return fmt.Sprintf("schema v%d, branch %s, created %s",
		m.SchemaVersion, m.Branch, m.CreatedAt.Format(time.RFC3339))
}
