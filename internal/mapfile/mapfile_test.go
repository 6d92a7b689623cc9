package mapfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitranim/dbh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapping = "entities:\n" +
	"  user:\n" +
	"    table: t_user\n" +
	"    columns:\n" +
	"      - {name: id, key: true}\n" +
	"      - {name: name}\n" +
	"      - {name: school_id}\n" +
	"      - {name: update_time, updated: true}\n" +
	"    soft_delete: {column: deleted, active: 0, deleted: 1}\n" +
	"  school:\n" +
	"    table: t_school\n" +
	"    columns:\n" +
	"      - {name: id, key: true}\n" +
	"      - {name: title}\n" +
	"  user_school:\n" +
	"    join: {left: user, right: school, type: left, on: \"t1.`school_id`=t2.`id`\"}\n"

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbh-map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	d, err := Load(writeMapping(t, testMapping))
	require.NoError(t, err)

	assert.Equal(t, []string{"school", "user", "user_school"}, d.Names())

	desc, err := d.Describe("user")
	require.NoError(t, err)
	assert.Equal(t, "t_user", desc.Table)
	require.Len(t, desc.Columns, 4)
	assert.True(t, desc.Columns[0].Key)
	assert.True(t, desc.Columns[3].UpdateTimestamp)
	require.NotNil(t, desc.SoftDelete)
	assert.Equal(t, dbh.SoftDeleteSpec{Column: "deleted", Active: "0", Deleted: "1"}, *desc.SoftDelete)

	join, err := d.Describe("user_school")
	require.NoError(t, err)
	require.NotNil(t, join.Join)
	assert.Equal(t, dbh.JoinLeft, join.Join.Type)
	assert.Equal(t, "t_user", join.Join.Left.Table)
	assert.Equal(t, "t_school", join.Join.Right.Table)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading mapping file")
}

func TestFromMap_Validation(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]interface{}
		errSubstr string
	}{
		{
			name: "missing table",
			raw: map[string]interface{}{"entities": map[string]interface{}{
				"user": map[string]interface{}{"columns": []interface{}{}},
			}},
			errSubstr: "table is required",
		},
		{
			name: "duplicate column",
			raw: map[string]interface{}{"entities": map[string]interface{}{
				"user": map[string]interface{}{
					"table": "t_user",
					"columns": []interface{}{
						map[string]interface{}{"name": "id"},
						map[string]interface{}{"name": "id"},
					},
				},
			}},
			errSubstr: "duplicate column",
		},
		{
			name: "unknown join side",
			raw: map[string]interface{}{"entities": map[string]interface{}{
				"pair": map[string]interface{}{
					"join": map[string]interface{}{"left": "a", "right": "b", "on": "x=y"},
				},
			}},
			errSubstr: "unknown left entity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestFromMap_BlankJoinCondition(t *testing.T) {
	_, err := FromMap(map[string]interface{}{"entities": map[string]interface{}{
		"a":    map[string]interface{}{"table": "t_a"},
		"b":    map[string]interface{}{"table": "t_b"},
		"pair": map[string]interface{}{"join": map[string]interface{}{"left": "a", "right": "b", "on": "  "}},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbh.ErrMissingJoinCondition))
}

func TestDescriber_Rows(t *testing.T) {
	d, err := Load(writeMapping(t, testMapping))
	require.NoError(t, err)

	row := Row{Entity: "user", Values: map[string]interface{}{"id": 10, "name": "one"}}

	desc, err := d.Describe(&row)
	require.NoError(t, err)

	val, err := d.ReadValue(desc.Columns[0], row)
	require.NoError(t, err)
	assert.Equal(t, 10, val)

	val, err = d.ReadValue(desc.Columns[2], row)
	require.NoError(t, err)
	assert.Nil(t, val)

	_, err = d.Describe("unknown")
	assert.True(t, errors.Is(err, dbh.ErrUnmappedType))

	_, err = d.Describe(42)
	assert.True(t, errors.Is(err, dbh.ErrUnmappedType))

	_, err = d.ReadValue(desc.Columns[0], "user")
	assert.True(t, errors.Is(err, dbh.ErrUnmappedType))
}

func TestDescriber_Builder(t *testing.T) {
	d, err := Load(writeMapping(t, testMapping))
	require.NoError(t, err)

	builder := dbh.Builder{Describer: d}

	frag, err := builder.BuildSelect("user_school")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t1.`id`,t1.`name`,t1.`school_id`,t1.`update_time`,t2.`id`,t2.`title` "+
			"FROM `t_user` t1 LEFT JOIN `t_school` t2 ON t1.`school_id`=t2.`id`",
		frag.Text,
	)

	frag, err = builder.BuildDelete(Row{Entity: "user", Values: map[string]interface{}{"id": 7}})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `t_user` WHERE `deleted`=0 AND (`id`=?)", frag.Text)
	assert.Equal(t, []interface{}{7}, frag.Args)

	_, err = builder.BuildDelete(Row{Entity: "user", Values: map[string]interface{}{}})
	assert.True(t, errors.Is(err, dbh.ErrNullKeyValue))
}
