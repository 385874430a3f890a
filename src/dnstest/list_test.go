// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnstest/dnstest/src/dnstest"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"list": [
			{"name": "Cloudflare DNS", "IP": "1.1.1.1", "delay": null, "status": "pending"},
			{"name": "Google Public DNS", "IP": "8.8.8.8", "delay": 12.5, "status": "success"}
		]
	}`)

	list, err := dnstest.ParseJSON(data)
	require.NoError(t, err)
	require.Equal(t, 2, list.Len())
	assert.Equal(t, "Cloudflare DNS", list.Servers[0].Name)
	assert.Nil(t, list.Servers[0].Delay)
	require.NotNil(t, list.Servers[1].Delay)
	assert.Equal(t, 12.5, *list.Servers[1].Delay)
	assert.Equal(t, dnstest.StatusSuccess, list.Servers[1].Status)
}

func TestParseJSONMalformed(t *testing.T) {
	t.Run("bad address", func(t *testing.T) {
		_, err := dnstest.ParseJSON([]byte(`{"list": [{"name": "Bad", "IP": "not-an-ip"}]}`))
		assert.ErrorIs(t, err, dnstest.ErrMalformedList)
	})

	t.Run("bad JSON", func(t *testing.T) {
		_, err := dnstest.ParseJSON([]byte(`{"list": [`))
		assert.ErrorIs(t, err, dnstest.ErrMalformedList)
	})
}

func TestParseYAMLEquivalentToJSON(t *testing.T) {
	fromYAML, err := dnstest.ParseYAML([]byte("list:\n  - name: Quad9\n    IP: 9.9.9.9\n"))
	require.NoError(t, err)

	fromJSON, err := dnstest.ParseJSON([]byte(`{"list": [{"name": "Quad9", "IP": "9.9.9.9"}]}`))
	require.NoError(t, err)

	require.Equal(t, fromJSON.Len(), fromYAML.Len())
	assert.Equal(t, fromJSON.Servers[0].Name, fromYAML.Servers[0].Name)
	assert.Equal(t, fromJSON.Servers[0].IP, fromYAML.Servers[0].IP)
}

func TestExportLoadRoundTrip(t *testing.T) {
	original := dnstest.DefaultIPv4()

	for _, ext := range []string{"json", "yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dnslist."+ext)
			require.NoError(t, dnstest.ExportFile(original, path))

			loaded, err := dnstest.LoadFile(path)
			require.NoError(t, err)

			require.Equal(t, original.Len(), loaded.Len())
			for i := range original.Servers {
				assert.Equal(t, original.Servers[i].Name, loaded.Servers[i].Name, "entry %d name", i)
				assert.Equal(t, original.Servers[i].IP, loaded.Servers[i].IP, "entry %d IP", i)
			}
		})
	}
}

func TestExportFileFailure(t *testing.T) {
	err := dnstest.ExportFile(dnstest.DefaultIPv4(), filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.ErrorIs(t, err, dnstest.ErrExport)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := dnstest.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, dnstest.ErrMalformedList)
}

func TestFromSpecs(t *testing.T) {
	t.Run("with and without names", func(t *testing.T) {
		list, err := dnstest.FromSpecs("8.8.8.8#Google", "1.1.1.1")
		require.NoError(t, err)
		require.Equal(t, 2, list.Len())
		assert.Equal(t, "Google", list.Servers[0].Name)
		assert.Equal(t, "1.1.1.1", list.Servers[1].Name, "name defaults to the address")
	})

	t.Run("invalid address", func(t *testing.T) {
		_, err := dnstest.FromSpecs("invalid_ip#Test")
		assert.ErrorIs(t, err, dnstest.ErrMalformedList)
	})
}

func TestMerge(t *testing.T) {
	a, err := dnstest.FromSpecs("8.8.8.8#Google", "1.1.1.1#Cloudflare")
	require.NoError(t, err)
	b, err := dnstest.FromSpecs("1.1.1.1#Duplicate", "9.9.9.9#Quad9")
	require.NoError(t, err)

	merged := dnstest.Merge(a, b)
	require.Equal(t, 3, merged.Len())

	// First occurrence wins and input order is preserved.
	assert.Equal(t, "Google", merged.Servers[0].Name)
	assert.Equal(t, "Cloudflare", merged.Servers[1].Name)
	assert.Equal(t, "Quad9", merged.Servers[2].Name)
}
