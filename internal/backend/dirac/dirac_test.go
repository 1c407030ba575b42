// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/gridmemo/internal/backend"
	diracx "github.com/staranto/gridmemo/internal/dirac"
	"github.com/staranto/gridmemo/internal/table"
)

type fakeCatalog struct {
	dump    string
	dumpErr error
	files   map[string][]byte
	dumped  []string
}

func (f *fakeCatalog) DirectoryDump(_ context.Context, lfn string) (diracx.Result, error) {
	f.dumped = append(f.dumped, lfn)
	if f.dumpErr != nil {
		return diracx.Result{}, f.dumpErr
	}
	return diracx.Result{Result: gjson.Parse(f.dump)}, nil
}

func (f *fakeCatalog) Download(_ context.Context, lfn string) ([]byte, error) {
	data, ok := f.files[lfn]
	if !ok {
		return nil, diracx.ErrRequest
	}
	return data, nil
}

var loc = backend.MustParseLocation("dirac://gridpp/user/a/alice/cache/")

func TestList(t *testing.T) {
	cat := &fakeCatalog{dump: `{"OK": true, "Value": {"Successful": {"/gridpp/user/a/alice/cache": {"Files": {
		"/gridpp/user/a/alice/cache/bbb.table.yaml": {},
		"/gridpp/user/a/alice/cache/aaa.table.yaml": {}
	}}}, "Failed": {}}}`}
	be := New(Static(cat))

	names, err := be.List(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/gridpp/user/a/alice/cache/aaa.table.yaml",
		"/gridpp/user/a/alice/cache/bbb.table.yaml",
	}, names)
	assert.Equal(t, []string{"/gridpp/user/a/alice/cache"}, cat.dumped)
}

func TestList_MissingDirectoryIsEmpty(t *testing.T) {
	cat := &fakeCatalog{dump: `{"OK": true, "Value": {"Successful": {}, "Failed": {"/gridpp/x": "No such file or directory"}}}`}
	names, err := New(Static(cat)).List(context.Background(), loc)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestList_Unreachable(t *testing.T) {
	tests := []struct {
		name    string
		connect Connector
	}{
		{"dump fails", Static(&fakeCatalog{dumpErr: errors.New("connection refused")})},
		{"directory fails", Static(&fakeCatalog{dump: `{"OK": true, "Value": {"Successful": {}, "Failed": {"/x": "Permission denied"}}}`})},
		{"connect fails", func() (Catalog, error) { return nil, errors.New("no proxy") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.connect).List(context.Background(), loc)
			assert.ErrorIs(t, err, backend.ErrBackendUnreachable)
		})
	}
}

func TestLoad(t *testing.T) {
	data, _ := table.Coerce([]map[string]any{{"x": 1}})
	encoded, err := table.Marshal(data)
	require.NoError(t, err)

	cat := &fakeCatalog{files: map[string][]byte{
		"/gridpp/user/a/alice/cache/fp.table.yaml":  encoded,
		"/gridpp/user/a/alice/cache/bad.table.yaml": []byte("::"),
	}}
	be := New(Static(cat))
	ctx := context.Background()

	got, err := be.Load(ctx, loc, "fp")
	require.NoError(t, err)
	assert.True(t, table.Equal(data, got))

	_, err = be.Load(ctx, loc, "bad")
	assert.ErrorIs(t, err, backend.ErrArtifactCorrupt)

	_, err = be.Load(ctx, loc, "absent")
	assert.ErrorIs(t, err, backend.ErrBackendUnreachable)
}

func TestStore_ReadOnly(t *testing.T) {
	one, _ := table.Coerce(1)
	err := New(Static(&fakeCatalog{})).Store(context.Background(), loc, "fp", one)
	assert.ErrorIs(t, err, backend.ErrReadOnly)
}

func TestConnectOnce(t *testing.T) {
	calls := 0
	be := New(func() (Catalog, error) {
		calls++
		return &fakeCatalog{dump: `{"OK": true, "Value": {"Successful": {}, "Failed": {}}}`}, nil
	}, WithExtension(".tbl"))

	for i := 0; i < 3; i++ {
		_, err := be.List(context.Background(), loc)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, "dirac", be.Scheme())
}
