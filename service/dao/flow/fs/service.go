package fs

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/service/dao"
)

// Service implements filesystem-backed flow definition storage on top of the
// abstract file storage layer, so basePath may point at a local directory or
// any afs-supported scheme. Definitions are stored as YAML, which also covers
// flows authored as JSON.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, model.Flow] = (*Service)(nil)

// Save persists a flow definition
func (s *Service) Save(ctx context.Context, flow *model.Flow) error {
	if flow == nil {
		return dao.ErrNilEntity
	}
	if flow.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}
	location := s.flowPath(flow.ID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save flow to %s: %w", location, err)
	}
	return nil
}

// Load retrieves a flow definition by id
func (s *Service) Load(ctx context.Context, id string) (*model.Flow, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	location := s.flowPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check flow %s: %w", location, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow %s: %w", location, err)
	}

	flow, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode flow %s: %w", location, err)
	}
	if flow.ID == "" {
		flow.ID = id
	}
	return flow, nil
}

// Delete removes a flow definition
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	location := s.flowPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check flow %s: %w", location, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err = s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete flow %s: %w", location, err)
	}
	return nil
}

// List returns all flow definitions found under the base path
func (s *Service) List(ctx context.Context, _ ...*dao.Parameter) ([]*model.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	var flows []*model.Flow
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		if !strings.HasSuffix(object.Name(), ".yaml") && !strings.HasSuffix(object.Name(), ".yml") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("error reading flow %s: %v", object.URL(), err)
			continue
		}
		flow, err := decode(data)
		if err != nil {
			log.Printf("error decoding flow %s: %v", object.URL(), err)
			continue
		}
		if flow.ID == "" {
			flow.ID = strings.TrimSuffix(strings.TrimSuffix(object.Name(), ".yaml"), ".yml")
		}
		flows = append(flows, flow)
	}
	return flows, nil
}

func decode(data []byte) (*model.Flow, error) {
	flow := &model.Flow{}
	if err := yaml.Unmarshal(data, flow); err != nil {
		return nil, err
	}
	flow.Normalize()
	return flow, nil
}

func (s *Service) flowPath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.yaml", id))
}

// New creates a filesystem flow storage rooted at basePath
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base path %s: %w", basePath, err)
		}
	}
	return &Service{basePath: basePath, fs: fs}, nil
}
