package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaSet compiles each tool's InputSchema on first use and validates
// call arguments against it.
type schemaSet struct {
	tools map[string]Tool

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func newSchemaSet(tools []Tool) *schemaSet {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name] = t
	}
	return &schemaSet{tools: m, compiled: make(map[string]*jsonschema.Schema)}
}

func (s *schemaSet) schema(name string) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sch, ok := s.compiled[name]; ok {
		return sch, nil
	}
	tool, ok := s.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema for %s: %w", name, err)
	}
	url := "mem://tools/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema for %s: %w", name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %s: %w", name, err)
	}
	s.compiled[name] = sch
	return sch, nil
}

// validate checks args against the named tool's schema. Missing arguments
// are treated as an empty object. Unknown tools pass; executeTool reports
// them.
func (s *schemaSet) validate(name string, args json.RawMessage) error {
	if _, ok := s.tools[name]; !ok {
		return nil
	}
	sch, err := s.schema(name)
	if err != nil {
		return err
	}

	var v interface{} = map[string]interface{}{}
	if len(bytes.TrimSpace(args)) > 0 && !bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		if err := json.Unmarshal(args, &v); err != nil {
			return fmt.Errorf("arguments are not valid JSON: %w", err)
		}
	}
	return sch.Validate(v)
}
