package flowpath

import (
	"fmt"
	"sync"

	"flowpath/common"
	"flowpath/flowtable"

	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"
)

// Collector traces every ingress entry of a snapshot
type Collector struct {
	topology *common.TopologyGraph
	index    *flowtable.Index
	tracer   *Tracer
	pool     *ants.Pool
}

// NewCollector returns a collector; a nil pool traces sequentially
func NewCollector(topology *common.TopologyGraph, index *flowtable.Index, pool *ants.Pool) *Collector {
	return &Collector{
		topology: topology,
		index:    index,
		tracer:   NewTracer(topology, index),
		pool:     pool,
	}
}

type traceTask struct {
	node  common.Node
	entry *flowtable.FlowEntry
	key   string
}

// FlowKey is the "srcMac-dstMac" key of an entry, built from the match as supplied
func FlowKey(entry *flowtable.FlowEntry) (string, bool) {
	src, okSrc := entry.Raw[flowtable.FieldDlSrc]
	dst, okDst := entry.Raw[flowtable.FieldDlDst]
	if !okSrc || !okDst {
		return "", false
	}
	return fmt.Sprintf("%v-%v", src, dst), true
}

// IsIngress reports whether entry on node receives traffic from a host or external port
func (c *Collector) IsIngress(node common.Node, entry *flowtable.FlowEntry) bool {
	inPort, ok := entry.Match.InPort()
	if !ok {
		return false
	}
	return !c.topology.IsLinkSource(node, inPort)
}

// Collect maps "srcMac-dstMac" to the traced path of every ingress entry.
// A flow whose trace fails is left out; it never aborts the others.
func (c *Collector) Collect() map[string]common.Path {
	tasks := c.ingressTasks()
	results := make([]common.Path, len(tasks))

	var wg sync.WaitGroup
	for i := range tasks {
		wg.Add(1)
		slot := i
		run := func() {
			defer wg.Done()
			results[slot] = c.trace(tasks[slot])
		}

		if c.pool == nil {
			run()
			continue
		}
		if err := c.pool.Submit(run); err != nil {
			log.Warnf("Collect: failed to submit trace for %s on %d: %v, tracing inline",
				tasks[slot].key, tasks[slot].node, err)
			run()
		}
	}
	wg.Wait()

	// merge in task order so a repeated key resolves the same way on every run
	paths := make(map[string]common.Path, len(tasks))
	skipped := 0
	for i, t := range tasks {
		if results[i] == nil {
			skipped++
			continue
		}
		paths[t.key] = results[i]
	}

	log.Infof("Collect: %d ingress entries, %d flowpaths, %d skipped", len(tasks), len(paths), skipped)
	return paths
}

func (c *Collector) ingressTasks() []traceTask {
	var tasks []traceTask
	for _, node := range c.topology.GetAllNodes() {
		for _, entry := range c.index.Table(node) {
			if !c.IsIngress(node, entry) {
				continue
			}
			key, ok := FlowKey(entry)
			if !ok {
				log.Warnf("Collect: ingress entry %v on %d has no dl_src/dl_dst, skipped", entry.Raw, node)
				continue
			}
			tasks = append(tasks, traceTask{node: node, entry: entry, key: key})
		}
	}
	return tasks
}

func (c *Collector) trace(t traceTask) common.Path {
	path, err := c.tracer.Trace(t.node, t.entry)
	if err != nil {
		log.Warnf("Could not find connected flowpath for %v on %d: %v", t.entry.Raw, t.node, err)
		return nil
	}
	return path
}
