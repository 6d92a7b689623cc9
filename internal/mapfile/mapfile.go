// Package mapfile describes entities from a YAML mapping file instead of Go
// struct tags. It backs the dbh CLI, where there are no Go types to reflect on.
//
// Example file:
//
//	entities:
//	  user:
//	    table: t_user
//	    columns:
//	      - {name: id, key: true}
//	      - {name: name}
//	      - {name: update_time, updated: true}
//	    soft_delete: {column: deleted, active: "0", deleted: "1"}
//	  user_school:
//	    join: {left: user, right: school, type: LEFT, on: "t1.`school_id`=t2.`id`"}
package mapfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitranim/dbh"
)

// File is the decoded mapping file.
type File struct {
	Entities map[string]Entity `koanf:"entities"`
}

// Entity maps one name to either a table or a join of two other entities.
type Entity struct {
	Table      string      `koanf:"table"`
	Columns    []Column    `koanf:"columns"`
	SoftDelete *SoftDelete `koanf:"soft_delete"`
	Join       *Join       `koanf:"join"`
}

// Column is a single mapped column.
type Column struct {
	Name    string `koanf:"name"`
	Key     bool   `koanf:"key"`
	Updated bool   `koanf:"updated"`
}

// SoftDelete names the logical deletion marker and its two literal states.
type SoftDelete struct {
	Column  string `koanf:"column"`
	Active  string `koanf:"active"`
	Deleted string `koanf:"deleted"`
}

// Join pairs two named entities.
type Join struct {
	Left  string `koanf:"left"`
	Right string `koanf:"right"`
	Type  string `koanf:"type"`
	On    string `koanf:"on"`
}

// Row is an instance of a mapped entity: column values keyed by column name.
// Missing values read as null.
type Row struct {
	Entity string
	Values map[string]interface{}
}

// Describer implements dbh.Describer over a loaded mapping file. Entities are
// referenced by name, either as a plain string or through a Row.
type Describer struct {
	descs map[string]*dbh.EntityDescriptor
}

var _ dbh.Describer = (*Describer)(nil)

// Load reads a mapping file from disk.
func Load(path string) (*Describer, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading mapping file %s: %w", path, err)
	}
	return fromKoanf(k)
}

// FromMap builds a describer from an already decoded mapping, using the same
// layout as the file.
func FromMap(raw map[string]interface{}) (*Describer, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(raw, ""), nil); err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Describer, error) {
	var mapping File
	if err := k.Unmarshal("", &mapping); err != nil {
		return nil, fmt.Errorf("unable to decode mapping: %w", err)
	}
	return New(mapping)
}

// New validates the mapping and resolves joins.
func New(mapping File) (*Describer, error) {
	out := &Describer{descs: make(map[string]*dbh.EntityDescriptor, len(mapping.Entities))}

	// Tables first, so joins can reference them regardless of order.
	for _, name := range sortedNames(mapping.Entities) {
		ent := mapping.Entities[name]
		if ent.Join != nil {
			continue
		}
		desc, err := tableDescriptor(name, ent)
		if err != nil {
			return nil, err
		}
		out.descs[name] = desc
	}

	for _, name := range sortedNames(mapping.Entities) {
		ent := mapping.Entities[name]
		if ent.Join == nil {
			continue
		}
		desc, err := out.joinDescriptor(name, *ent.Join)
		if err != nil {
			return nil, err
		}
		out.descs[name] = desc
	}

	return out, nil
}

// Names returns the entity names in sorted order.
func (d *Describer) Names() []string {
	names := make([]string, 0, len(d.descs))
	for name := range d.descs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe implements dbh.Describer.
func (d *Describer) Describe(entity interface{}) (*dbh.EntityDescriptor, error) {
	name, err := entityName(entity)
	if err != nil {
		return nil, err
	}
	desc, ok := d.descs[name]
	if !ok {
		return nil, unmapped(fmt.Errorf("no entity named %q in mapping", name))
	}
	return desc, nil
}

// ReadValue implements dbh.Describer.
func (d *Describer) ReadValue(col dbh.ColumnDescriptor, instance interface{}) (interface{}, error) {
	row, ok := asRow(instance)
	if !ok {
		return nil, unmapped(fmt.Errorf("expected a mapfile.Row, got %T", instance))
	}
	return row.Values[col.Name], nil
}

func tableDescriptor(name string, ent Entity) (*dbh.EntityDescriptor, error) {
	if strings.TrimSpace(ent.Table) == "" {
		return nil, fmt.Errorf("entity %q: table is required", name)
	}

	desc := &dbh.EntityDescriptor{Table: ent.Table}
	seen := make(map[string]bool, len(ent.Columns))
	for i, col := range ent.Columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, fmt.Errorf("entity %q: column %d has no name", name, i)
		}
		if seen[col.Name] {
			return nil, fmt.Errorf("entity %q: duplicate column %q", name, col.Name)
		}
		seen[col.Name] = true

		desc.Columns = append(desc.Columns, dbh.ColumnDescriptor{
			Name:            col.Name,
			Key:             col.Key,
			UpdateTimestamp: col.Updated,
			Index:           []int{i},
		})
	}

	if soft := ent.SoftDelete; soft != nil {
		if soft.Column == "" {
			return nil, fmt.Errorf("entity %q: soft_delete.column is required", name)
		}
		spec := dbh.SoftDeleteSpec{Column: soft.Column, Active: soft.Active, Deleted: soft.Deleted}
		if spec.Active == "" {
			spec.Active = "0"
		}
		if spec.Deleted == "" {
			spec.Deleted = "1"
		}
		desc.SoftDelete = &spec
	}

	return desc, nil
}

func (d *Describer) joinDescriptor(name string, join Join) (*dbh.EntityDescriptor, error) {
	left, ok := d.descs[join.Left]
	if !ok {
		return nil, fmt.Errorf("entity %q: unknown left entity %q", name, join.Left)
	}
	right, ok := d.descs[join.Right]
	if !ok {
		return nil, fmt.Errorf("entity %q: unknown right entity %q", name, join.Right)
	}

	typ := dbh.JoinType(strings.ToUpper(strings.TrimSpace(join.Type)))
	if typ == "" {
		typ = dbh.JoinInner
	}

	desc, err := dbh.NewJoinDescriptor(left, right, typ, join.On)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", name, err)
	}
	return &dbh.EntityDescriptor{Join: desc}, nil
}

func entityName(entity interface{}) (string, error) {
	switch entity := entity.(type) {
	case string:
		return entity, nil
	default:
		row, ok := asRow(entity)
		if !ok {
			return "", unmapped(fmt.Errorf("expected an entity name or a mapfile.Row, got %T", entity))
		}
		return row.Entity, nil
	}
}

func asRow(instance interface{}) (Row, bool) {
	switch instance := instance.(type) {
	case Row:
		return instance, true
	case *Row:
		if instance == nil {
			return Row{}, false
		}
		return *instance, true
	default:
		return Row{}, false
	}
}

func unmapped(cause error) error {
	err := dbh.ErrUnmappedType
	err.Cause = cause
	return err
}

func sortedNames(entities map[string]Entity) []string {
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
