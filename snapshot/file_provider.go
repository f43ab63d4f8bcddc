package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flowpath/common"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var snapshotExtensions = []string{".json", ".yaml", ".yml"}

// FileProvider serves snapshots stored as JSON or YAML files in a directory:
// physical_topology.json, physical_flowtables.json, tenant_<id>_topology.yaml, ...
type FileProvider struct {
	dataDir string
}

func NewFileProvider(dataDir string) (*FileProvider, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("snapshot directory %s: %w", dataDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot directory %s is not a directory", dataDir)
	}
	return &FileProvider{dataDir: dataDir}, nil
}

func (fp *FileProvider) GetTopology(ctx context.Context, scope Scope) (*Topology, error) {
	var t Topology
	if err := fp.load(ctx, scope, "topology", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (fp *FileProvider) GetFlowTables(ctx context.Context, scope Scope) (FlowTables, error) {
	ft := FlowTables{}
	if err := fp.load(ctx, scope, "flowtables", &ft); err != nil {
		return nil, err
	}
	return ft, nil
}

// SaveTopology writes t as JSON for scope
func (fp *FileProvider) SaveTopology(scope Scope, t *Topology) error {
	return fp.save(scope, "topology", t)
}

// SaveFlowTables writes ft as JSON for scope
func (fp *FileProvider) SaveFlowTables(scope Scope, ft FlowTables) error {
	return fp.save(scope, "flowtables", ft)
}

func (fp *FileProvider) load(ctx context.Context, scope Scope, kind string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrFetch, err)
	}
	path, err := fp.find(scope, kind)
	if err != nil {
		return err
	}
	if err := readSnapshotFile(path, out); err != nil {
		log.Warningf("error loading %s snapshot (%s): %v", kind, path, err)
		return fmt.Errorf("%w: %v", common.ErrFetch, err)
	}
	log.Infof("successfully loaded. File: %v", path)
	return nil
}

func (fp *FileProvider) find(scope Scope, kind string) (string, error) {
	base := filepath.Join(fp.dataDir, scope.String()+"_"+kind)
	for _, ext := range snapshotExtensions {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, nil
		}
	}
	return "", fmt.Errorf("%w: no %s snapshot for %s in %s", common.ErrFetch, kind, scope, fp.dataDir)
}

func (fp *FileProvider) save(scope Scope, kind string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", kind, err)
	}
	path := filepath.Join(fp.dataDir, scope.String()+"_"+kind+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", kind, err)
	}
	return nil
}

// readSnapshotFile decodes path as YAML or JSON depending on its extension
func readSnapshotFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	default:
		return json.Unmarshal(data, out)
	}
}
