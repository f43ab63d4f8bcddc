package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flowpath/common"

	log "github.com/sirupsen/logrus"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc"
)

const DefaultSnapshotPrefix = "/flowpath/snapshots"

type EtcdConfig struct {
	Endpoints   []string
	DialTimeout time.Duration
	Prefix      string
}

func DefaultEtcdConfig() EtcdConfig {
	return EtcdConfig{
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: 5 * time.Second,
		Prefix:      DefaultSnapshotPrefix,
	}
}

// EtcdProvider reads snapshots published under <prefix>/<scope>/topology and
// <prefix>/<scope>/flowtables
type EtcdProvider struct {
	client *clientv3.Client
	kv     clientv3.KV
	prefix string
}

func NewEtcdProvider(config EtcdConfig) (*EtcdProvider, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   config.Endpoints,
		DialTimeout: config.DialTimeout,
		DialOptions: []grpc.DialOption{grpc.WithBlock()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	p := newEtcdProviderWithKV(client, config.Prefix)
	p.client = client
	return p, nil
}

func newEtcdProviderWithKV(kv clientv3.KV, prefix string) *EtcdProvider {
	if prefix == "" {
		prefix = DefaultSnapshotPrefix
	}
	return &EtcdProvider{
		kv:     kv,
		prefix: strings.TrimSuffix(prefix, "/"),
	}
}

func (p *EtcdProvider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

func (p *EtcdProvider) key(scope Scope, kind string) string {
	return fmt.Sprintf("%s/%s/%s", p.prefix, scope, kind)
}

func (p *EtcdProvider) GetTopology(ctx context.Context, scope Scope) (*Topology, error) {
	var t Topology
	if err := p.get(ctx, p.key(scope, "topology"), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *EtcdProvider) GetFlowTables(ctx context.Context, scope Scope) (FlowTables, error) {
	ft := FlowTables{}
	if err := p.get(ctx, p.key(scope, "flowtables"), &ft); err != nil {
		return nil, err
	}
	return ft, nil
}

func (p *EtcdProvider) PublishTopology(ctx context.Context, scope Scope, t *Topology) error {
	return p.put(ctx, p.key(scope, "topology"), t)
}

func (p *EtcdProvider) PublishFlowTables(ctx context.Context, scope Scope, ft FlowTables) error {
	return p.put(ctx, p.key(scope, "flowtables"), ft)
}

func (p *EtcdProvider) get(ctx context.Context, key string, out interface{}) error {
	resp, err := p.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: get %s: %v", common.ErrFetch, key, err)
	}
	if len(resp.Kvs) == 0 {
		return fmt.Errorf("%w: no snapshot at %s", common.ErrFetch, key)
	}
	return decodeKeyValue(resp.Kvs[0], out)
}

func decodeKeyValue(kv *mvccpb.KeyValue, out interface{}) error {
	if err := json.Unmarshal(kv.Value, out); err != nil {
		log.Warningf("error unmarshalling snapshot %s (revision %d): %v", kv.Key, kv.ModRevision, err)
		return fmt.Errorf("%w: decode %s: %v", common.ErrFetch, kv.Key, err)
	}
	return nil
}

func (p *EtcdProvider) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if _, err := p.kv.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	log.Infof("Snapshot published: %s (%d bytes)", key, len(data))
	return nil
}
