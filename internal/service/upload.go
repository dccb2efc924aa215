package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/config"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

var (
	ErrNotImage  = errors.New("Fail bukan gambar")
	ErrTooLarge  = errors.New("Saiz gambar melebihi had")
	ErrBadBase64 = errors.New("Data gambar rosak")
)

// UploadService stores uploaded images on local disk under a unique name
// and hands back the URL the static route serves them on.
type UploadService struct {
	dir       string
	publicURL string
	maxWidth  int
	maxBytes  int
}

func NewUploadService(cfg config.UploadConfig, publicURL string) *UploadService {
	return &UploadService{
		dir:       cfg.Dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxWidth:  cfg.MaxWidth,
		maxBytes:  cfg.MaxBytes,
	}
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func uniqueName(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeName.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%s-%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), base, ext)
}

func (s *UploadService) Save(_ context.Context, req model.UploadRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", err
	}
	raw := req.Base64
	if i := strings.Index(raw, ";base64,"); i >= 0 {
		raw = raw[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrBadBase64
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return "", ErrTooLarge
	}

	// trust the bytes, not the declared type; only raster formats, since
	// uploads are served from our own origin
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), model.ImageTypes...) {
		return "", ErrNotImage
	}
	data = s.shrink(data, mt)

	name := uniqueName(req.Filename, mt.Extension())
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	logger.Info("upload.ok", "file", name, "type", mt.String(), "bytes", len(data))
	return s.publicURL + "/uploads/" + url.PathEscape(name), nil
}

// shrink scales images wider than maxWidth down, keeping the aspect ratio.
// Formats imaging cannot decode are stored as they came.
func (s *UploadService) shrink(data []byte, mt *mimetype.MIME) []byte {
	if s.maxWidth <= 0 {
		return data
	}
	format, err := imaging.FormatFromExtension(mt.Extension())
	if err != nil {
		return data
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil || img.Bounds().Dx() <= s.maxWidth {
		return data
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos), format); err != nil {
		logger.Warn("upload.resize_failed", "err", err)
		return data
	}
	return buf.Bytes()
}
