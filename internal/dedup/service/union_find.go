/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

// unionFind tracks connected components over entity indexes together with the weakest edge that
// joined each component.
type unionFind struct {
	parent  []int
	size    []int
	minEdge []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent:  make([]int, n),
		size:    make([]int, n),
		minEdge: make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
		uf.minEdge[i] = -1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// union records an edge of the given weight between a and b.
func (uf *unionFind) union(a, b, weight int) {
	rootA := uf.find(a)
	rootB := uf.find(b)
	if rootA == rootB {
		uf.minEdge[rootA] = minWeight(uf.minEdge[rootA], weight)
		return
	}
	if uf.size[rootA] < uf.size[rootB] {
		rootA, rootB = rootB, rootA
	}
	uf.parent[rootB] = rootA
	uf.size[rootA] += uf.size[rootB]
	uf.minEdge[rootA] = minWeight(minWeight(uf.minEdge[rootA], uf.minEdge[rootB]), weight)
}

// minWeight treats -1 as "no edge yet".
func minWeight(a, b int) int {
	if a < 0 {
		return b
	}
	if b < 0 {
		return a
	}
	return min(a, b)
}
