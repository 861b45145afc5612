/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

package casestore

import (
	"sort"
	"sync"

	"github.com/qri-io/jsonschema"
)

type typeMap struct {
	sync.RWMutex
	byID   map[int]*ArtifactType
	byName map[string]*ArtifactType
}

func newTypeMap() *typeMap {
	return &typeMap{
		byID:   map[int]*ArtifactType{},
		byName: map[string]*ArtifactType{},
	}
}

func (rm *typeMap) add(t ArtifactType) {
	rm.Lock()
	c := t
	rm.byID[t.ID] = &c
	rm.byName[t.Name] = &c
	rm.Unlock()
}

func (rm *typeMap) load(id int) (ArtifactType, bool) {
	rm.RLock()
	defer rm.RUnlock()
	t, ok := rm.byID[id]
	if !ok {
		return ArtifactType{}, false
	}
	return *t, true
}

func (rm *typeMap) loadName(name string) (ArtifactType, bool) {
	rm.RLock()
	defer rm.RUnlock()
	t, ok := rm.byName[name]
	if !ok {
		return ArtifactType{}, false
	}
	return *t, true
}

// all returns the types of a category ordered by id.
func (rm *typeMap) all(category Category) []ArtifactType {
	rm.RLock()
	var types []ArtifactType
	for _, t := range rm.byID {
		if t.Category == category {
			types = append(types, *t)
		}
	}
	rm.RUnlock()
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types
}

type schemaMap struct {
	sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

func newSchemaMap() *schemaMap {
	return &schemaMap{schemas: map[string]*jsonschema.Schema{}}
}

func (sm *schemaMap) load(typeName string) (*jsonschema.Schema, bool) {
	sm.RLock()
	defer sm.RUnlock()
	s, ok := sm.schemas[typeName]
	return s, ok
}

func (sm *schemaMap) store(typeName string, schema *jsonschema.Schema) {
	sm.Lock()
	sm.schemas[typeName] = schema
	sm.Unlock()
}
