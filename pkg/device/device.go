// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package device provides the embedded scan fixtures used by annotation
// self-tests. Each fixture file describes one device as
// port -> protocol -> subprotocol -> record payload.
package device

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vulntor/annotator/pkg/protocols"
	"github.com/vulntor/annotator/pkg/record"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrUnknownDevice is returned for a device name with no fixture.
var ErrUnknownDevice = errors.New("unknown device")

type layout map[string]map[string]map[string]map[string]any

// Device is one fixture.
type Device struct {
	Name  string
	ports layout
}

// Catalog indexes fixtures by device name.
type Catalog struct {
	devices map[string]*Device
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Builtin returns the fixtures compiled into the binary. They are parsed
// once per process.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = Load(embedded, "data")
	})
	return builtin, builtinErr
}

// Load parses every *.yaml file under dir in fsys. Files starting with "."
// or "_" are ignored.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	c := &Catalog{devices: make(map[string]*Device)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if path.Ext(name) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		var l layout
		if err := yaml.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("device %s is not a valid fixture: %w", name, err)
		}
		id := strings.TrimSuffix(name, ".yaml")
		c.devices[id] = &Device{Name: id, ports: l}
	}
	return c, nil
}

// Device returns the fixture named name.
func (c *Catalog) Device(name string) (*Device, error) {
	d, ok := c.devices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, name)
	}
	return d, nil
}

// Names lists the fixtures in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.devices))
	for n := range c.devices {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Get returns the record captured for the given scan context. A zero port
// selects the lowest port carrying proto, and a zero subprotocol selects the
// first subprotocol in name order.
func (d *Device) Get(port int, proto protocols.Protocol, sub protocols.Subprotocol) (*record.Record, bool) {
	if port != 0 {
		return d.lookup(strconv.Itoa(port), proto, sub)
	}
	for _, key := range d.portKeys() {
		if rec, ok := d.lookup(key, proto, sub); ok {
			return rec, true
		}
	}
	return nil, false
}

func (d *Device) portKeys() []string {
	keys := make([]string, 0, len(d.ports))
	for k := range d.ports {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	return keys
}

func (d *Device) lookup(portKey string, proto protocols.Protocol, sub protocols.Subprotocol) (*record.Record, bool) {
	byProto, ok := d.ports[portKey]
	if !ok {
		return nil, false
	}
	bySub, ok := byProto[proto.PrettyName]
	if !ok {
		return nil, false
	}

	subName := sub.PrettyName
	if sub.IsZero() {
		names := make([]string, 0, len(bySub))
		for n := range bySub {
			names = append(names, n)
		}
		if len(names) == 0 {
			return nil, false
		}
		sort.Strings(names)
		subName = names[0]
	}
	data, ok := bySub[subName]
	if !ok || data == nil {
		return nil, false
	}

	port, _ := strconv.Atoi(portKey)
	ctx := record.Context{Port: port, Protocol: proto, Subprotocol: sub}
	if sub.IsZero() {
		if resolved, err := protocols.SubprotocolFromName(subName); err == nil {
			ctx.Subprotocol = resolved
		}
	}
	return record.New(ctx, copyMap(data)), true
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case map[string]any:
			out[k] = copyMap(t)
		case []any:
			out[k] = append([]any(nil), t...)
		default:
			out[k] = v
		}
	}
	return out
}
