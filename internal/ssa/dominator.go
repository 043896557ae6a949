/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/** Immediate dominators are computed with the Lengauer-Tarjan algorithm
 *  described in https://doi.org/10.1145%2F357062.357071
 */

package ssa

type _LtNode struct {
    semi     int
    node     *BasicBlock
    dom      *_LtNode
    label    *_LtNode
    parent   *_LtNode
    ancestor *_LtNode
    pred     []*_LtNode
    bucket   []*_LtNode
}

type _LengauerTarjan struct {
    nodes  []*_LtNode
    vertex map[int]int
}

func (self *_LengauerTarjan) dfs(bb *BasicBlock) {
    i := len(self.nodes)
    p := &_LtNode{semi: i, node: bb}

    /* number the vertex */
    p.label = p
    self.vertex[bb.Id] = i
    self.nodes = append(self.nodes, p)

    /* traverse the successors */
    for _, w := range bb.Successors() {
        idx, ok := self.vertex[w.Id]

        /* not visited yet */
        if !ok {
            self.dfs(w)
            idx = self.vertex[w.Id]
            self.nodes[idx].parent = p
        }

        /* add predecessors */
        q := self.nodes[idx]
        q.pred = append(q.pred, p)
    }
}

func (self *_LengauerTarjan) eval(p *_LtNode) *_LtNode {
    if p.ancestor == nil {
        return p
    } else {
        self.compress(p)
        return p.label
    }
}

func (self *_LengauerTarjan) compress(p *_LtNode) {
    if p.ancestor.ancestor != nil {
        self.compress(p.ancestor)
        if p.label.semi > p.ancestor.label.semi { p.label = p.ancestor.label }
        p.ancestor = p.ancestor.ancestor
    }
}

// DominatorTree holds the immediate dominator relation of the blocks reachable
// from Root, unreachable blocks do not appear in it.
type DominatorTree struct {
    Root        *BasicBlock
    DominatedBy map[int]*BasicBlock
    DominatorOf map[int][]*BasicBlock
}

func BuildDominatorTree(fn *Func) *DominatorTree {
    lt := &_LengauerTarjan{vertex: make(map[int]int)}
    ret := &DominatorTree {
        Root        : fn.Root,
        DominatedBy : make(map[int]*BasicBlock),
        DominatorOf : make(map[int][]*BasicBlock),
    }

    /* Step 1: number the vertices in depth-first order */
    lt.dfs(fn.Root)

    /* Step 2 & 3: semidominators and implicit immediate dominators */
    for i := len(lt.nodes) - 1; i > 0; i-- {
        p := lt.nodes[i]
        w := p.parent

        /* semi(p) = min { semi(eval(v)) | v -> p } */
        for _, v := range p.pred {
            if q := lt.eval(v); q.semi < p.semi {
                p.semi = q.semi
            }
        }

        /* link to the spanning tree, and defer to the semidominator */
        p.ancestor = w
        lt.nodes[p.semi].bucket = append(lt.nodes[p.semi].bucket, p)

        /* resolve everything waiting on the parent */
        for _, v := range w.bucket {
            if q := lt.eval(v); q.semi < v.semi {
                v.dom = q
            } else {
                v.dom = w
            }
        }

        /* clear the bucket */
        w.bucket = w.bucket[:0]
    }

    /* Step 4: explicit immediate dominators, in increasing order */
    for _, p := range lt.nodes[1:] {
        if p.dom != lt.nodes[p.semi] {
            p.dom = p.dom.dom
        }
    }

    /* map the dominator relations */
    for _, p := range lt.nodes[1:] {
        ret.DominatedBy[p.node.Id] = p.dom.node
        ret.DominatorOf[p.dom.node.Id] = append(ret.DominatorOf[p.dom.node.Id], p.node)
    }

    /* all done */
    return ret
}

func (self *DominatorTree) Reachable(bb *BasicBlock) bool {
    _, ok := self.DominatedBy[bb.Id]
    return ok || bb == self.Root
}

// Dominates reports whether every path from the root to b passes through a.
// A block dominates itself, and nothing dominates an unreachable block.
func (self *DominatorTree) Dominates(a *BasicBlock, b *BasicBlock) bool {
    if !self.Reachable(b) {
        return false
    }

    /* walk up the tree */
    for p := b; p != nil; p = self.DominatedBy[p.Id] {
        if p == a {
            return true
        }
    }

    /* not found */
    return false
}
