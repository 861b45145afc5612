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

// Package nodes keeps navigation trees in sync with tree results. Nodes
// are updated in place when a refreshed result arrives, so a consumer can
// hold on to them across refreshes.
package nodes

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore/dao"
)

// TreeNode is a node of a navigation tree.
type TreeNode[T any] struct {
	mu     sync.RWMutex
	item   dao.TreeItem[T]
	logger *zap.Logger
}

// NewTreeNode creates a node for item.
func NewTreeNode[T any](item dao.TreeItem[T], logger *zap.Logger) *TreeNode[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeNode[T]{item: item, logger: logger}
}

// Item returns the current item of the node.
func (n *TreeNode[T]) Item() dao.TreeItem[T] {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.item
}

// ID returns the id of the node.
func (n *TreeNode[T]) ID() interface{} {
	return n.Item().ID
}

// DisplayName returns the name of the node, followed by the count if
// there is one.
func (n *TreeNode[T]) DisplayName() string {
	return DisplayName(n.Item())
}

// Update replaces the item of the node. Items with another id are
// rejected.
func (n *TreeNode[T]) Update(item dao.TreeItem[T]) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if item.ID != n.item.ID {
		n.logger.Warn("tree item does not match node",
			zap.Any("node_id", n.item.ID), zap.Any("item_id", item.ID))
		return false
	}
	n.item = item
	return true
}

// DisplayName formats the name of a tree item as "name (count)".
func DisplayName[T any](item dao.TreeItem[T]) string {
	if item.Count == nil {
		return item.DisplayName
	}
	return fmt.Sprintf("%s (%d)", item.DisplayName, *item.Count)
}

// Tree is a flat list of nodes in the order they were first seen.
type Tree[T any] struct {
	mu     sync.Mutex
	nodes  []*TreeNode[T]
	index  map[interface{}]*TreeNode[T]
	logger *zap.Logger
}

// NewTree creates an empty tree.
func NewTree[T any](logger *zap.Logger) *Tree[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tree[T]{index: map[interface{}]*TreeNode[T]{}, logger: logger}
}

// Apply updates the nodes of known ids and appends nodes for new ids. It
// returns the number of added and updated nodes.
func (t *Tree[T]) Apply(results *dao.TreeResults[T]) (added, updated int) {
	if results == nil {
		return 0, 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range results.Items {
		if n, ok := t.index[item.ID]; ok {
			if n.Update(item) {
				updated++
			}
			continue
		}
		n := NewTreeNode(item, t.logger)
		t.index[item.ID] = n
		t.nodes = append(t.nodes, n)
		added++
	}
	return added, updated
}

// Nodes returns the nodes of the tree.
func (t *Tree[T]) Nodes() []*TreeNode[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	nodes := make([]*TreeNode[T], len(t.nodes))
	copy(nodes, t.nodes)
	return nodes
}

// Len returns the number of nodes.
func (t *Tree[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}
