// Package media stages panorama uploads, runs them through the tiler and
// attaches the result to a project as a scene.
package media

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/mediastore"
	"go.uber.org/zap"
)

const (
	tilesDir    = "tiles"
	cubeDir     = "images/project"
	stageEquirect = "equirect"
	stagePano   = "panorama"
)

var (
	errProcessing = apperr.New(apperr.Internal, "Panorama processing failed")
	errBadSceneID = apperr.New(apperr.InvalidArgument, "Invalid sceneId")
)

// SceneStore is the part of the tour store media writes to.
type SceneStore interface {
	Get(ctx context.Context, projectID int64) (*models.ProjectModel, error)
	AppendScene(ctx context.Context, projectID int64, scene models.Scene) (*models.ProjectModel, error)
	RemoveScene(ctx context.Context, projectID int64, sceneID string) (*models.Scene, error)
}

type Service struct {
	projects  SceneStore
	proc      Processor
	staticDir string
	uploadDir string
	logger    *zap.Logger
}

func NewService(projects SceneStore, proc Processor, staticDir, uploadDir string, logger *zap.Logger) *Service {
	return &Service{
		projects:  projects,
		proc:      proc,
		staticDir: staticDir,
		uploadDir: uploadDir,
		logger:    logger.Named("media"),
	}
}

// stage copies an upload into the staging area. Nothing is left behind on
// failure.
func (s *Service) stage(fh *multipart.FileHeader, sub string) (string, error) {
	ext, ok := mediastore.ImageExt(fh.Filename)
	if !ok {
		return "", mediastore.ErrImageType
	}
	dir := filepath.Join(s.uploadDir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	target := filepath.Join(dir, uuid.NewString()+ext)
	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}
	return target, nil
}

func sceneName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SliceEquirect tiles an equirectangular upload into a multires scene.
func (s *Service) SliceEquirect(ctx context.Context, projectID int64, fh *multipart.FileHeader) (*models.Scene, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	staged, err := s.stage(fh, stageEquirect)
	if err != nil {
		return nil, err
	}
	defer os.Remove(staged)

	sceneID := uuid.NewString()
	rel := path.Join(tilesDir, strconv.FormatInt(projectID, 10), sceneID)
	outDir := filepath.Join(s.staticDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if err := s.proc.Process(ctx, FormatMultires, staged, outDir); err != nil {
		_ = os.RemoveAll(outDir)
		return nil, apperr.Wrap(apperr.Internal, errProcessing.Message, err)
	}

	scene := models.Scene{
		ID:        sceneID,
		Name:      sceneName(fh.Filename),
		Type:      models.SceneTypeMultires,
		TilesPath: "/" + rel + "/",
	}
	original := "original" + filepath.Ext(staged)
	if err := os.Rename(staged, filepath.Join(outDir, original)); err != nil {
		s.logger.Warn("keep original image failed", zap.String("scene_id", sceneID), zap.Error(err))
	} else {
		scene.OriginalImage = "/" + path.Join(rel, original)
	}

	if _, err := s.projects.AppendScene(ctx, projectID, scene); err != nil {
		_ = os.RemoveAll(outDir)
		return nil, err
	}
	return &scene, nil
}

// ConvertCube renders the six cube faces of a panorama into a cube scene.
func (s *Service) ConvertCube(ctx context.Context, projectID int64, fh *multipart.FileHeader) (*models.Scene, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	staged, err := s.stage(fh, stagePano)
	if err != nil {
		return nil, err
	}
	defer os.Remove(staged)

	sceneID := uuid.NewString()
	rel := path.Join(cubeDir, strconv.FormatInt(projectID, 10), sceneID)
	outDir := filepath.Join(s.staticDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	fail := func(err error) (*models.Scene, error) {
		_ = os.RemoveAll(outDir)
		return nil, err
	}
	if err := s.proc.Process(ctx, FormatCube, staged, outDir); err != nil {
		return fail(apperr.Wrap(apperr.Internal, errProcessing.Message, err))
	}

	faces := make([]string, len(CubeFaces))
	for i, face := range CubeFaces {
		name := face + ".png"
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			return fail(apperr.Wrap(apperr.Internal, errProcessing.Message, err))
		}
		faces[i] = "/" + path.Join(rel, name)
	}

	scene := models.Scene{
		ID:        sceneID,
		Name:      sceneName(fh.Filename),
		Type:      models.SceneTypeCube,
		CubePaths: faces,
	}
	if _, err := s.projects.AppendScene(ctx, projectID, scene); err != nil {
		return fail(err)
	}
	return &scene, nil
}

func (s *Service) sceneDirs(projectID int64, sceneID string) []string {
	pid := strconv.FormatInt(projectID, 10)
	return []string{
		filepath.Join(s.staticDir, tilesDir, pid, sceneID),
		filepath.Join(s.staticDir, filepath.FromSlash(cubeDir), pid, sceneID),
	}
}

// DeleteScene detaches a scene from its project and removes its files. A
// folder left over from a scene the project no longer lists is still removed.
func (s *Service) DeleteScene(ctx context.Context, projectID int64, sceneID string) error {
	if sceneID == "" || sceneID != filepath.Base(sceneID) || sceneID == "." || sceneID == ".." {
		return errBadSceneID
	}
	_, err := s.projects.RemoveScene(ctx, projectID, sceneID)
	if err != nil && !errors.Is(err, project.ErrSceneNotFound) {
		return err
	}

	removedFiles := false
	for _, dir := range s.sceneDirs(projectID, sceneID) {
		if _, statErr := os.Stat(dir); statErr != nil {
			continue
		}
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return rmErr
		}
		removedFiles = true
	}
	if err != nil && !removedFiles {
		return err
	}
	return nil
}

// SweepStaged removes staged uploads older than maxAge and reports how many
// files went.
func (s *Service) SweepStaged(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(s.uploadDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err == nil {
				removed++
			}
		}
		return nil
	})
	return removed, err
}
