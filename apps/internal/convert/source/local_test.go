package source_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/skein/apps/internal/convert"
	"github.com/tilsley/skein/apps/internal/convert/source"
)

var localRef = convert.RepoRef{Repo: "dropped-dir"}

func TestLocal_ListTree_FiltersAndPrunes(t *testing.T) {
	fsys := fstest.MapFS{
		"main.go":                       {Data: []byte("package main")},
		"src/app.ts":                    {Data: []byte("export {}")},
		"LICENSE":                       {Data: []byte("MIT")},
		"assets/logo.png":               {Data: []byte{0x89}},
		"package-lock.json":             {Data: []byte("{}")},
		"node_modules/leftpad/index.js": {Data: []byte("nope")},
		"sub/node_modules/x/y.ts":       {Data: []byte("nope")},
	}
	l := source.NewLocal(fsys, convert.DefaultPolicy())

	paths, err := l.ListTree(context.Background(), localRef)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", "src/app.ts", "LICENSE"}, paths)
}

func TestLocal_ReadFile(t *testing.T) {
	fsys := fstest.MapFS{"main.go": {Data: []byte("package main")}}
	l := source.NewLocal(fsys, convert.DefaultPolicy())

	content, err := l.ReadFile(context.Background(), localRef, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", content)
}

func TestLocal_ReadFile_MissingIsReadError(t *testing.T) {
	l := source.NewLocal(fstest.MapFS{}, convert.DefaultPolicy())

	_, err := l.ReadFile(context.Background(), localRef, "gone.go")
	require.Error(t, err)
	var readErr convert.ReadError
	assert.ErrorAs(t, err, &readErr)
	assert.Equal(t, "gone.go", readErr.Path)
}
