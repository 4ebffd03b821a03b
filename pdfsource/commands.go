package pdfsource

import (
	"bytes"
	"fmt"

	"github.com/tsawler/tabula/contentstream"
	"github.com/tsawler/tabula/core"

	"github.com/tsawler/takeoff/graphicsstate"
	"github.com/tsawler/takeoff/model"
)

// Drawing is the vector content of one page.
type Drawing struct {
	graphicsstate.WalkResult
	PageWidth  float64
	PageHeight float64
}

// Commands walks the page content, following form XObjects, and returns
// its drawing commands in page units with the MediaBox origin at (0, 0).
// Y still increases upwards.
func (d *Document) Commands(page int) (Drawing, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(page)
	if err != nil {
		return Drawing{}, err
	}
	box := mediaBox(p)

	contents, err := p.Contents()
	if err != nil {
		return Drawing{}, fmt.Errorf("failed to get contents: %w", err)
	}
	var data bytes.Buffer
	for _, obj := range contents {
		resolved, err := d.r.Resolve(obj)
		if err != nil {
			return Drawing{}, fmt.Errorf("failed to resolve content stream: %w", err)
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return Drawing{}, fmt.Errorf("failed to decode content stream: %w", err)
		}
		data.Write(decoded)
		data.WriteByte('\n')
	}

	ops, err := parse(data.Bytes())
	if err != nil {
		return Drawing{}, fmt.Errorf("failed to parse content stream: %w", err)
	}

	// A page without resources can still draw.
	resources, _ := p.Resources()

	walker := graphicsstate.NewWalker(graphicsstate.FormResolverFunc(d.resolveForm))
	return Drawing{
		WalkResult: walker.Walk(ops, resources, graphicsstate.PageMatrix(box)),
		PageWidth:  box[2] - box[0],
		PageHeight: box[3] - box[1],
	}, nil
}

func parse(data []byte) ([]contentstream.Operation, error) {
	if len(data) == 0 {
		return nil, nil
	}
	parseMu.Lock()
	defer parseMu.Unlock()
	return contentstream.NewParser(data).Parse()
}

// resolveForm looks up a form XObject. It is called from within Commands,
// so d.mu is already held.
func (d *Document) resolveForm(resources core.Dict, name string) (*graphicsstate.Form, error) {
	if resources == nil {
		return nil, nil
	}
	xobjects, err := d.dict(resources.Get("XObject"))
	if err != nil || xobjects == nil {
		return nil, err
	}
	obj := xobjects.Get(name)
	if obj == nil {
		return nil, fmt.Errorf("xobject %s not found", name)
	}
	resolved, err := d.r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	stream, ok := resolved.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("xobject %s is %T, not a stream", name, resolved)
	}
	if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Form" {
		return nil, nil
	}

	decoded, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode form: %w", err)
	}
	ops, err := parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	form := &graphicsstate.Form{Operations: ops, Matrix: model.Identity()}
	if m, err := d.matrix(stream.Dict.Get("Matrix")); err == nil && m != nil {
		form.Matrix = *m
	}
	if res, err := d.dict(stream.Dict.Get("Resources")); err == nil {
		form.Resources = res
	}
	return form, nil
}

// dict resolves obj to a dictionary. A missing object yields nil.
func (d *Document) dict(obj core.Object) (core.Dict, error) {
	if obj == nil {
		return nil, nil
	}
	resolved, err := d.r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("expected dictionary, got %T", resolved)
	}
	return dict, nil
}

func (d *Document) matrix(obj core.Object) (*model.Matrix, error) {
	if obj == nil {
		return nil, nil
	}
	resolved, err := d.r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(core.Array)
	if !ok || len(arr) != 6 {
		return nil, fmt.Errorf("invalid form matrix %v", resolved)
	}
	var m model.Matrix
	for i, v := range arr {
		switch n := v.(type) {
		case core.Int:
			m[i] = float64(n)
		case core.Real:
			m[i] = float64(n)
		default:
			return nil, fmt.Errorf("invalid form matrix element %T", v)
		}
	}
	return &m, nil
}
