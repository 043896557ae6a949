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

package ssa

import (
    `fmt`
    `html`
    `strings`

    `github.com/oleiade/lane`
)

type _DotEdge struct {
    a int
    b int
}

func dotrows(buf []string, src string) []string {
    for _, ss := range strings.Split(src, "\n") {
        vv := strings.ReplaceAll(html.EscapeString(ss), " ", "&nbsp;")
        buf = append(buf, fmt.Sprintf(`<tr><td align="left">%s</td></tr>`, vv))
    }
    return buf
}

func dotnode(bb *BasicBlock, dt *DominatorTree) string {
    var idom string
    var rows []string
    var pred []string

    /* the Phi nodes and instructions */
    for _, v := range bb.Phi { rows = dotrows(rows, v.String()) }
    for _, v := range bb.Ins { rows = dotrows(rows, v.String()) }

    /* and the terminator */
    if bb.Term != nil {
        rows = dotrows(rows, bb.Term.String())
    }

    /* predecessors */
    for _, p := range bb.Pred {
        pred = append(pred, p.String())
    }

    /* immediate dominator */
    if d := dt.DominatedBy[bb.Id]; d != nil {
        idom = d.String()
    } else {
        idom = "∅"
    }

    /* build the table */
    return fmt.Sprintf(
        `<table border="1" cellborder="0" cellspacing="0"><tr><td bgcolor="lightgrey"><b>%s</b> (pred: %s, idom: %s)</td></tr>%s</table>`,
        html.EscapeString(bb.String()),
        html.EscapeString(strings.Join(pred, ", ")),
        html.EscapeString(idom),
        strings.Join(rows, ""),
    )
}

func dotlabel(bb *BasicBlock, i int, it IrSuccessors) string {
    if v, ok := it.Value(); ok {
        return fmt.Sprintf("%d", v)
    }

    /* labels depend on the terminator */
    switch bb.Term.(type) {
        case *IrCondBr : if i == 0 { return "then" } else { return "else" }
        case *IrSwitch : return "default"
        default        : return "goto"
    }
}

// Dot renders the CFG of the function in GraphViz format. Blocks are visited
// breadth-first from the entry, so unreachable blocks are not shown.
func (self *Func) Dot() string {
    q := lane.NewQueue()
    n := make(map[int]bool)
    e := make(map[_DotEdge]bool)
    dt := BuildDominatorTree(self)

    /* graph header */
    buf := []string {
        fmt.Sprintf(`digraph "%s" {`, self.Name),
        `    graph [ fontname = "Fira Code" ]`,
        `    node [ fontname = "Fira Code" fontsize = "14" shape = "plaintext" ]`,
        `    edge [ fontname = "Fira Code" ]`,
        `    START [ shape = "circle" ]`,
        fmt.Sprintf(`    START -> bb_%d`, self.Root.Id),
    }

    /* visit every reachable block */
    for q.Enqueue(self.Root); !q.Empty(); {
        p := q.Dequeue().(*BasicBlock)

        /* a block may be queued more than once */
        if n[p.Id] {
            continue
        }

        /* add the node */
        n[p.Id] = true
        buf = append(buf, fmt.Sprintf(`    bb_%d [ label = < %s > ]`, p.Id, dotnode(p, dt)))

        /* not terminated */
        if p.Term == nil {
            continue
        }

        /* add the edges */
        for i, it := 0, p.Term.Successors(); it.Next(); i++ {
            ln := it.Block()
            edge := _DotEdge{p.Id, ln.Id}

            /* queue the successor */
            if !n[ln.Id] {
                q.Enqueue(ln)
            }

            /* parallel edges are drawn once */
            if !e[edge] {
                e[edge] = true
                buf = append(buf, fmt.Sprintf(`    bb_%d -> bb_%d [ label = "%s" ]`, p.Id, ln.Id, dotlabel(p, i, it)))
            }
        }
    }

    /* all done */
    buf = append(buf, "}")
    return strings.Join(buf, "\n") + "\n"
}
