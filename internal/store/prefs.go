// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store persists calibration constants in small namespaced
// key/value files.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrStoreUnavailable means the namespace could not be opened, read or
	// written.
	ErrStoreUnavailable = pkgerrors.New("store unavailable")
	// ErrReadOnly is returned by writes on a handle opened read-only.
	ErrReadOnly = pkgerrors.New("store opened read-only")
)

// Prefs is an open handle on one namespace. Values are kept in memory and
// written back to <dir>/<namespace>.json by Close.
type Prefs struct {
	mu       sync.Mutex
	path     string
	readOnly bool
	values   map[string]float64
	dirty    bool
	closed   bool
}

// Open opens namespace under dir. A namespace that does not exist yet is
// empty; it is created on the first Close after a write.
func Open(dir, namespace string, readOnly bool) (*Prefs, error) {
	if namespace == "" {
		return nil, pkgerrors.Wrap(ErrStoreUnavailable, "empty namespace")
	}

	p := &Prefs{
		path:     filepath.Join(dir, namespace+".json"),
		readOnly: readOnly,
		values:   map[string]float64{},
	}

	b, err := os.ReadFile(p.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.WithField("path", p.path).Debug("store: namespace does not exist yet")
		return p, nil
	case err != nil:
		return nil, pkgerrors.Wrapf(ErrStoreUnavailable, "read %s: %v", p.path, err)
	}

	if len(b) > 0 {
		if err := json.Unmarshal(b, &p.values); err != nil {
			return nil, pkgerrors.Wrapf(ErrStoreUnavailable, "parse %s: %v", p.path, err)
		}
	}

	return p, nil
}

// GetUint16 returns the value stored under key, or def when the key is
// missing or does not hold a uint16.
func (p *Prefs) GetUint16(key string, def uint16) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.values[key]
	if !ok {
		return def
	}
	if v < 0 || v > math.MaxUint16 || v != math.Trunc(v) {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("store: value is not a uint16")
		return def
	}
	return uint16(v)
}

// GetFloat64 returns the value stored under key, or def when it is missing.
func (p *Prefs) GetFloat64(key string, def float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.values[key]
	if !ok {
		return def
	}
	return v
}

func (p *Prefs) PutUint16(key string, v uint16) error {
	return p.put(key, float64(v))
}

// PutFloat64 stores v under key. Non-finite values cannot be represented
// in the file and are rejected.
func (p *Prefs) PutFloat64(key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pkgerrors.Errorf("store: %s: non-finite value %v", key, v)
	}
	return p.put(key, v)
}

func (p *Prefs) put(key string, v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readOnly {
		return ErrReadOnly
	}
	p.values[key] = v
	p.dirty = true
	return nil
}

// Remove deletes key from the namespace.
func (p *Prefs) Remove(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readOnly {
		return ErrReadOnly
	}
	if _, ok := p.values[key]; ok {
		delete(p.values, key)
		p.dirty = true
	}
	return nil
}

// Clear deletes every key in the namespace.
func (p *Prefs) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readOnly {
		return ErrReadOnly
	}
	p.values = map[string]float64{}
	p.dirty = true
	return nil
}

// Len reports how many keys the namespace holds.
func (p *Prefs) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

// Close writes pending changes and releases the handle. Closing twice is a
// no-op.
func (p *Prefs) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.readOnly || !p.dirty {
		return nil
	}
	return p.flush()
}

// abandon releases the handle without writing anything.
func (p *Prefs) abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.dirty = false
}

func (p *Prefs) flush() error {
	b, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "store: encode")
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return pkgerrors.Wrapf(ErrStoreUnavailable, "create dir: %v", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return pkgerrors.Wrapf(ErrStoreUnavailable, "write %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		_ = os.Remove(tmp)
		return pkgerrors.Wrapf(ErrStoreUnavailable, "rename %s: %v", tmp, err)
	}

	p.dirty = false
	logrus.WithField("path", p.path).Debug("store: namespace written")
	return nil
}
