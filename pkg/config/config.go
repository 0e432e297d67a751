// Package config loads connection profiles and entity schemas from YAML.
//
//	url: http://localhost:3000
//	timeout: 10s
//	token: ${PGRST_JWT}
//	headers:
//	  Accept-Profile: api
//	returning: representation
//	entities:
//	  - name: owners
//	    fields:
//	      id: uuid
//	      name: string
//	  - name: pets
//	    fields:
//	      id: int
//	      kind: {enum: [cat, dog]}
//	      owner: {ref: owners.id}
//	      address: {nested: addresses}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-postgrest-client/auth"
	"github.com/robert-malhotra/go-postgrest-client/pkg/client"
	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
)

// ErrNoURL is returned when a client is requested from a profile without url.
var ErrNoURL = errors.New("config: url is required")

// Config is one connection profile.
type Config struct {
	URL       string            `yaml:"url"`
	Timeout   time.Duration     `yaml:"timeout"`
	Token     string            `yaml:"token"`
	Headers   map[string]string `yaml:"headers"`
	Returning string            `yaml:"returning"`
	Entities  []Entity          `yaml:"entities"`
}

// Entity declares the schema of one table or view.
type Entity struct {
	Name   string               `yaml:"name"`
	Fields map[string]FieldSpec `yaml:"fields"`
}

// FieldSpec is either a type name (string, int, float, bool, uuid,
// timestamp, object, array) or one of the mappings {enum: [...]},
// {ref: entity.field} and {nested: entity}.
type FieldSpec struct {
	Type   string
	Enum   []string
	Ref    string
	Nested string
}

// UnmarshalYAML accepts the scalar and mapping forms of a field.
func (f *FieldSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		f.Type = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Enum   []string `yaml:"enum"`
			Ref    string   `yaml:"ref"`
			Nested string   `yaml:"nested"`
		}
		for i := 0; i < len(node.Content); i += 2 {
			switch key := node.Content[i].Value; key {
			case "enum", "ref", "nested":
			default:
				return fmt.Errorf("line %d: unknown field option %q", node.Content[i].Line, key)
			}
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: a field takes exactly one of enum, ref or nested", node.Line)
		}
		f.Enum, f.Ref, f.Nested = raw.Enum, raw.Ref, raw.Nested
		return nil
	}
	return fmt.Errorf("line %d: field must be a type name or a mapping", node.Line)
}

// Load reads the profile at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a profile. Unknown keys are rejected and ${VAR} references
// in token are expanded from the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.Token = os.ExpandEnv(cfg.Token)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Returning {
	case "", string(client.ReturnMinimal), string(client.ReturnRepresentation):
	default:
		return fmt.Errorf("returning must be minimal or representation, got %q", c.Returning)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	seen := make(map[string]bool, len(c.Entities))
	for i, e := range c.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity %d has no name", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: %q", model.ErrDuplicateEntityType, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Registry builds the declared schemas in order. A ref or nested target has
// to be declared before the entity using it.
func (c *Config) Registry() (*model.Registry, error) {
	built := make(map[string]*model.Schema, len(c.Entities))
	schemas := make([]*model.Schema, 0, len(c.Entities))

	for _, e := range c.Entities {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		fields := make([]model.Field, 0, len(names))
		for _, name := range names {
			ft, err := e.Fields[name].fieldType(built)
			if err != nil {
				return nil, fmt.Errorf("entity %s field %s: %w", e.Name, name, err)
			}
			fields = append(fields, model.Field{Name: name, Type: ft})
		}

		s, err := model.NewSchema(e.Name, fields...)
		if err != nil {
			return nil, err
		}
		built[e.Name] = s
		schemas = append(schemas, s)
	}
	return model.NewRegistry(schemas...)
}

func (f FieldSpec) fieldType(built map[string]*model.Schema) (model.FieldType, error) {
	switch {
	case f.Type != "":
		k, ok := model.ParseKind(f.Type)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", f.Type)
		}
		return model.Primitive{Kind: k}, nil
	case len(f.Enum) > 0:
		return model.Enum{Values: slices.Clone(f.Enum)}, nil
	case f.Ref != "":
		entity, field, ok := strings.Cut(f.Ref, ".")
		if !ok || field == "" {
			return nil, fmt.Errorf("ref %q must be entity.field", f.Ref)
		}
		target, ok := built[entity]
		if !ok {
			return nil, fmt.Errorf("%w: ref target %q is not declared before use", model.ErrUnknownEntityType, entity)
		}
		return model.Reference{Schema: target, Field: field}, nil
	case f.Nested != "":
		target, ok := built[f.Nested]
		if !ok {
			return nil, fmt.Errorf("%w: nested target %q is not declared before use", model.ErrUnknownEntityType, f.Nested)
		}
		return model.Nested{Schema: target}, nil
	}
	return nil, fmt.Errorf("field has no type")
}

// HTTPClient returns an http.Client carrying the profile's timeout, token and
// headers.
func (c *Config) HTTPClient() *http.Client {
	var wrappers []auth.Wrapper
	if c.Token != "" {
		wrappers = append(wrappers, auth.Bearer(c.Token))
	}
	names := make([]string, 0, len(c.Headers))
	for name := range c.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		wrappers = append(wrappers, auth.Header(name, c.Headers[name]))
	}

	hc := &http.Client{Timeout: 30 * time.Second}
	if c.Timeout > 0 {
		hc.Timeout = c.Timeout
	}
	if len(wrappers) > 0 {
		hc.Transport = auth.Chain(http.DefaultTransport, wrappers...)
	}
	return hc
}

// ClientOptions turns the profile into client options.
func (c *Config) ClientOptions() []client.ClientOption {
	return []client.ClientOption{client.WithHTTPClient(c.HTTPClient())}
}

// ModelOptions turns the profile into model client options.
func (c *Config) ModelOptions() []client.ModelOption {
	if c.Returning == "" {
		return nil
	}
	return []client.ModelOption{client.WithReturning(client.Returning(c.Returning))}
}

// NewClient builds a client for the profile. extra options are applied after
// the profile's own.
func (c *Config) NewClient(extra ...client.ClientOption) (*client.Client, error) {
	if c.URL == "" {
		return nil, ErrNoURL
	}
	return client.NewClient(c.URL, append(c.ClientOptions(), extra...)...)
}

// NewModelClient builds a client and wraps it with the declared registry.
func (c *Config) NewModelClient(extra ...client.ClientOption) (*client.ModelClient, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	cli, err := c.NewClient(extra...)
	if err != nil {
		return nil, err
	}
	return client.NewModelClient(cli, reg, c.ModelOptions()...)
}
