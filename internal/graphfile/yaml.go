// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graphfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/ops"
)

type yamlDocument struct {
	Nodes []yamlNode `yaml:"nodes"`
}

type yamlNode struct {
	Key   string     `yaml:"key"`
	Value *yaml.Node `yaml:"value"`
}

func parseYAML(data []byte, reg *ops.Registry) ([]graph.Entry, error) {
	var doc yamlDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, graph.Malformed("invalid YAML: %v", err)
	}

	d := decoder{reg: reg}
	entries := make([]graph.Entry, 0, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n.Key == "" {
			return nil, graph.Malformed("nodes[%d] has no key", i)
		}
		if n.Value == nil {
			return nil, graph.Malformed("node %q has no value", n.Key)
		}

		var raw any
		if err := n.Value.Decode(&raw); err != nil {
			return nil, graph.Malformed("node %q: %v", n.Key, err)
		}
		s, err := d.spec(fmt.Sprintf("node %q", n.Key), raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, graph.Entry{Key: graph.Key(n.Key), Spec: s})
	}
	return entries, nil
}
