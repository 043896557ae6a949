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

package pipeline

import (
    `fmt`
    `strconv`
    `strings`
)

// PipelineError occures when failed to parse the pipeline description.
type PipelineError struct {
    Pos    int
    Src    string
    Reason string
}

func (self PipelineError) Error() string {
    return fmt.Sprintf("Pipeline error at position %d: %s", self.Pos, self.Reason)
}

type Node interface {
    fmt.Stringer
    node()
}

func (*PassNode)     node() {}
func (*RepeatNode)   node() {}
func (*FixpointNode) node() {}

type PassNode struct {
    Name string
}

func (self *PassNode) String() string {
    return self.Name
}

// RepeatNode runs the body exactly N times.
type RepeatNode struct {
    N    int
    Body []Node
}

func (self *RepeatNode) String() string {
    return fmt.Sprintf("repeat<%d>(%s)", self.N, Format(self.Body))
}

// FixpointNode runs the body until a round changes nothing.
type FixpointNode struct {
    Body []Node
}

func (self *FixpointNode) String() string {
    return fmt.Sprintf("fixpoint(%s)", Format(self.Body))
}

// Format prints a pipeline in its canonical form.
func Format(nodes []Node) string {
    buf := make([]string, 0, len(nodes))
    for _, v := range nodes { buf = append(buf, v.String()) }
    return strings.Join(buf, ",")
}

func isNameChar(c byte) bool {
    return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isName(name string) bool {
    if name == "" {
        return false
    }
    for i := 0; i < len(name); i++ {
        if !isNameChar(name[i]) {
            return false
        }
    }
    return true
}

type _Parser struct {
    i   int
    src string
}

// Parse parses a pipeline description such as
//
//   nested-if-combine,fixpoint(block-merge,tdce),repeat<2>(verify)
//
// Pass names are checked against the registry.
func Parse(src string) ([]Node, error) {
    p := &_Parser{src: src}
    ret, err := p.list()

    /* check for errors */
    if err != nil {
        return nil, err
    }

    /* must consume the whole string */
    if p.skip(); p.i != len(p.src) {
        return nil, p.errorf("unexpected character %q", p.src[p.i])
    } else {
        return ret, nil
    }
}

func (self *_Parser) errorf(format string, args ...interface{}) PipelineError {
    return PipelineError {
        Pos    : self.i,
        Src    : self.src,
        Reason : fmt.Sprintf(format, args...),
    }
}

func (self *_Parser) skip() {
    for self.i < len(self.src) && strings.IndexByte(" \t\r\n", self.src[self.i]) >= 0 {
        self.i++
    }
}

func (self *_Parser) eat(c byte) bool {
    if self.skip(); self.i < len(self.src) && self.src[self.i] == c {
        self.i++
        return true
    } else {
        return false
    }
}

func (self *_Parser) expect(c byte) error {
    if self.eat(c) {
        return nil
    } else if self.i == len(self.src) {
        return self.errorf("expected %q, got end of pipeline", c)
    } else {
        return self.errorf("expected %q, got %q", c, self.src[self.i])
    }
}

func (self *_Parser) name() string {
    self.skip()
    p := self.i

    /* scan the identifier */
    for self.i < len(self.src) && isNameChar(self.src[self.i]) {
        self.i++
    }

    /* all done */
    return self.src[p:self.i]
}

func (self *_Parser) list() ([]Node, error) {
    var ret []Node

    /* parse items separated by commas */
    for {
        v, err := self.item()
        if err != nil {
            return nil, err
        }

        /* add to the list */
        ret = append(ret, v)
        if !self.eat(',') {
            return ret, nil
        }
    }
}

func (self *_Parser) body() ([]Node, error) {
    if err := self.expect('('); err != nil {
        return nil, err
    }

    /* the group must not be empty */
    if self.eat(')') {
        return nil, self.errorf("empty pass group")
    }

    /* parse the group */
    ret, err := self.list()
    if err != nil {
        return nil, err
    }

    /* close the group */
    if err = self.expect(')'); err != nil {
        return nil, err
    } else {
        return ret, nil
    }
}

func (self *_Parser) item() (Node, error) {
    self.skip()
    pos := self.i
    name := self.name()

    /* check for empty names */
    if name == "" {
        if self.i == len(self.src) {
            return nil, self.errorf("expected pass name, got end of pipeline")
        } else {
            return nil, self.errorf("expected pass name, got %q", self.src[self.i])
        }
    }

    /* check for groups */
    switch name {
        case "repeat"   : return self.repeat()
        case "fixpoint" : return self.fixpoint()
    }

    /* must be a registered pass */
    if _, ok := Lookup(name); !ok && name != PassVerify {
        self.i = pos
        return nil, self.errorf("unknown pass %q", name)
    } else {
        return &PassNode{Name: name}, nil
    }
}

func (self *_Parser) repeat() (Node, error) {
    if err := self.expect('<'); err != nil {
        return nil, err
    }

    /* parse the repeat count */
    self.skip()
    pos := self.i
    num := self.name()

    /* must be a positive integer */
    n, err := strconv.Atoi(num)
    if err != nil || n <= 0 {
        self.i = pos
        return nil, self.errorf("invalid repeat count %q", num)
    }

    /* close the count */
    if err = self.expect('>'); err != nil {
        return nil, err
    }

    /* parse the body */
    body, err := self.body()
    if err != nil {
        return nil, err
    } else {
        return &RepeatNode{N: n, Body: body}, nil
    }
}

func (self *_Parser) fixpoint() (Node, error) {
    if body, err := self.body(); err != nil {
        return nil, err
    } else {
        return &FixpointNode{Body: body}, nil
    }
}
