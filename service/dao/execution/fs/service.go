package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/dao"
)

// Service implements filesystem-backed execution storage. Records are stored
// as JSON so that a crashed run leaves an inspectable partial trace on disk.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, execution.FlowExecution] = (*Service)(nil)

// Save persists an execution record
func (s *Service) Save(ctx context.Context, e *execution.FlowExecution) error {
	if e == nil {
		return dao.ErrNilEntity
	}
	if e.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal execution: %w", err)
	}
	location := s.executionPath(e.ID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save execution to %s: %w", location, err)
	}
	return nil
}

// Load retrieves an execution record by id
func (s *Service) Load(ctx context.Context, id string) (*execution.FlowExecution, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	location := s.executionPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check execution %s: %w", location, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read execution %s: %w", location, err)
	}
	var record execution.FlowExecution
	if err = json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution %s: %w", location, err)
	}
	return &record, nil
}

// Delete removes an execution record
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	location := s.executionPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check execution %s: %w", location, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err = s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete execution %s: %w", location, err)
	}
	return nil
}

// List returns all execution records found under the base path
func (s *Service) List(ctx context.Context, _ ...*dao.Parameter) ([]*execution.FlowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	var records []*execution.FlowExecution
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("error reading execution %s: %v", object.URL(), err)
			continue
		}
		var record execution.FlowExecution
		if err = json.Unmarshal(data, &record); err != nil {
			log.Printf("error unmarshaling execution %s: %v", object.URL(), err)
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

func (s *Service) executionPath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem execution storage rooted at basePath
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
