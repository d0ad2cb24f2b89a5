package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// MaxFileSize is the largest upload accepted for a single file
const MaxFileSize = 25 << 20

var (
	// ErrUnknownCategory is returned for a category with no directory
	ErrUnknownCategory = errors.New("unknown file category")
	// ErrInvalidName is returned for names that try to leave their category directory
	ErrInvalidName = errors.New("invalid file name")
	// ErrTooLarge is returned when an upload exceeds MaxFileSize
	ErrTooLarge = errors.New("file too large")
)

var categories = map[string]bool{
	models.FileCategoryEvents:          true,
	models.FileCategoryGovernmentForms: true,
	models.FileCategoryEventReports:    true,
	models.FileCategoryMessages:        true,
}

// Local stores uploads on disk under one directory per category
type Local struct {
	root string
}

// NewLocal creates the category directories under root
func NewLocal(root string) (*Local, error) {
	for c := range categories {
		if err := os.MkdirAll(filepath.Join(root, c), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", c, err)
		}
	}
	return &Local{root: root}, nil
}

// Save copies an uploaded part to disk under a generated name
func (l *Local) Save(category string, fh *multipart.FileHeader) (models.FileAttachment, error) {
	if !categories[category] {
		return models.FileAttachment{}, ErrUnknownCategory
	}
	if fh.Size > MaxFileSize {
		return models.FileAttachment{}, ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return models.FileAttachment{}, err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext
	path := filepath.Join(l.root, category, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return models.FileAttachment{}, err
	}
	n, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return models.FileAttachment{}, err
	}

	return models.FileAttachment{
		Filename:     name,
		OriginalName: filepath.Base(fh.Filename),
		MimeType:     mimeType(fh, ext),
		Size:         n,
		Path:         category + "/" + name,
		UploadedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}, nil
}

func mimeType(fh *multipart.FileHeader, ext string) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Open returns a stored file. Names containing path separators are rejected.
func (l *Local) Open(category, name string) (*os.File, os.FileInfo, error) {
	path, err := l.resolve(category, name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, os.ErrNotExist
	}
	return f, info, nil
}

// Remove deletes a stored file, ignoring files that are already gone
func (l *Local) Remove(category, name string) error {
	path, err := l.resolve(category, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll deletes every file referenced by attachments
func (l *Local) RemoveAll(attachments ...models.FileAttachment) {
	for _, a := range attachments {
		category, name, ok := strings.Cut(a.Path, "/")
		if !ok {
			continue
		}
		_ = l.Remove(category, name)
	}
}

func (l *Local) resolve(category, name string) (string, error) {
	if !categories[category] {
		return "", ErrUnknownCategory
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(l.root, category, name), nil
}

// ServeFile writes a stored file, as an attachment when download is set
func (l *Local) ServeFile(w http.ResponseWriter, r *http.Request, category, name, downloadName string, download bool) error {
	f, info, err := l.Open(category, name)
	if err != nil {
		return err
	}
	defer f.Close()

	if download {
		if downloadName == "" {
			downloadName = name
		}
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
	return nil
}
