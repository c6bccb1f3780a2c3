package registry_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/progtree/internal/model"
)

func TestDetailWriter(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := newRegistry(t, insert{id: 1, parent: 0, text: "A"})
	w := r.DetailWriter(1)

	n, err := fmt.Fprint(w, "downloading")
	require.NoError(err)
	assert.Equal(11, n)

	a, _ := r.Get(1)
	assert.Equal("", a.Detail)

	_, err = fmt.Fprint(w, " 1/3\r\nunit 2")
	require.NoError(err)
	a, _ = r.Get(1)
	assert.Equal("downloading 1/3", a.Detail)

	require.NoError(w.Flush())
	a, _ = r.Get(1)
	assert.Equal("unit 2", a.Detail)
}

func TestDetailWriterUnknownAction(t *testing.T) {
	r := newRegistry(t)
	w := r.DetailWriter(5)

	_, err := fmt.Fprintln(w, "hello")
	assert.ErrorIs(t, err, model.ErrUnknownAction)
}
