// Package clusters holds the pipeline stage probability table and the named
// scenario presets.
package clusters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/pipeline-forecast/pkg/constants"
)

// Table maps a cluster name to its probability weight in percent (0..100).
type Table map[string]float64

// Known lists the well-known clusters in pipeline order.
var Known = []string{
	constants.ClusterSecured,
	constants.ClusterProposals,
	constants.ClusterHighLikelihood,
	constants.ClusterMediumLikelihood,
	constants.ClusterIdeas,
}

var presets = map[string]Table{
	"conservative": {
		constants.ClusterSecured:          100,
		constants.ClusterProposals:        45,
		constants.ClusterHighLikelihood:   30,
		constants.ClusterMediumLikelihood: 15,
		constants.ClusterIdeas:            5,
	},
	"realistic": {
		constants.ClusterSecured:          100,
		constants.ClusterProposals:        65,
		constants.ClusterHighLikelihood:   50,
		constants.ClusterMediumLikelihood: 30,
		constants.ClusterIdeas:            15,
	},
	"optimistic": {
		constants.ClusterSecured:          100,
		constants.ClusterProposals:        85,
		constants.ClusterHighLikelihood:   70,
		constants.ClusterMediumLikelihood: 45,
		constants.ClusterIdeas:            25,
	},
}

// PresetNames returns the preset names from most to least cautious.
func PresetNames() []string {
	return []string{"conservative", "realistic", "optimistic"}
}

// Preset returns a copy of the named preset. Names are matched
// case-insensitively.
func Preset(name string) (Table, error) {
	table, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown scenario preset %q, expected one of %s",
			name, strings.Join(PresetNames(), ", "))
	}
	return table.Clone(), nil
}

// Weight returns the probability of cluster in percent. Unrecognized clusters
// and a nil table weigh 0.
func (t Table) Weight(cluster string) float64 {
	return t[cluster]
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// With returns a copy of the table with overrides applied on top.
func (t Table) With(overrides Table) Table {
	out := t.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Names returns the table's clusters, well-known ones first in pipeline
// order, then any others alphabetically.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	seen := make(map[string]bool, len(Known))
	for _, name := range Known {
		if _, ok := t[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range t {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// IsKnown reports whether cluster is one of the well-known clusters.
func IsKnown(cluster string) bool {
	for _, name := range Known {
		if name == cluster {
			return true
		}
	}
	return false
}
