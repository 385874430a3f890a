// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a server list from its JSON exchange format:
//
//	{"list": [{"name": "Cloudflare DNS", "IP": "1.1.1.1", "delay": null, "status": "pending"}]}
//
// Every entry's address must parse; otherwise [ErrMalformedList] is
// returned and no partial list is produced.
func ParseJSON(data []byte) (List, error) {
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return List{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
	}
	if err := list.Validate(); err != nil {
		return List{}, err
	}
	return list, nil
}

// ParseYAML decodes a server list from the YAML variant of the exchange
// format. Validation behaves exactly as in [ParseJSON].
func ParseYAML(data []byte) (List, error) {
	var list List
	if err := yaml.Unmarshal(data, &list); err != nil {
		return List{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
	}
	if err := list.Validate(); err != nil {
		return List{}, err
	}
	return list, nil
}

// LoadFile loads a server list from path, choosing the decoder by file
// extension: ".yaml"/".yml" for YAML, JSON otherwise.
func LoadFile(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return List{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// EncodeJSON serializes the list in the JSON exchange format.
// The output round-trips through [ParseJSON] to an equivalent list.
func EncodeJSON(list List) ([]byte, error) {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	return data, nil
}

// EncodeYAML serializes the list in the YAML exchange format.
func EncodeYAML(list List) ([]byte, error) {
	data, err := yaml.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	return data, nil
}

// ExportFile writes the list to path, choosing the encoder by file
// extension as in [LoadFile]. Write failures wrap [ErrExport].
func ExportFile(list List, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = EncodeYAML(list)
	default:
		data, err = EncodeJSON(list)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	return nil
}

// Merge combines several lists into one, deduplicating by IP address.
// The first occurrence of each address wins and input order is preserved,
// so merged output stays deterministic.
func Merge(lists ...List) List {
	seen := make(map[string]struct{})
	var servers []Server
	for _, list := range lists {
		for _, s := range list.Servers {
			if _, dup := seen[s.IP]; dup {
				continue
			}
			seen[s.IP] = struct{}{}
			servers = append(servers, s)
		}
	}
	return List{Servers: servers}
}

// FromSpecs builds a list from command-line style specs of the form
// "IP#Name". The name part is optional and defaults to the address
// itself. An invalid address yields [ErrMalformedList].
//
//	list, err := dnstest.FromSpecs("8.8.8.8#Google", "1.1.1.1#Cloudflare")
func FromSpecs(specs ...string) (List, error) {
	servers := make([]Server, 0, len(specs))
	for _, spec := range specs {
		ip, name, found := strings.Cut(spec, "#")
		ip = strings.TrimSpace(ip)
		name = strings.TrimSpace(name)
		if !found || name == "" {
			name = ip
		}

		server, err := NewServer(name, ip)
		if err != nil {
			return List{}, err
		}
		servers = append(servers, server)
	}
	return List{Servers: servers}, nil
}
