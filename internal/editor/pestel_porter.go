package editor

import (
	"strings"

	"github.com/jonathan/strategy-report/internal/types"
)

// AddPestelFactor appends a factor to dimension d.
func AddPestelFactor(p types.Pestel, d types.PestelDimension, factor string) (types.Pestel, error) {
	list := p.Dimension(d)
	if list == nil {
		return p, &FieldError{Field: "dimension", Message: string(d)}
	}
	factor = strings.TrimSpace(factor)
	if factor == "" {
		return p, &FieldError{Field: "factor", Message: "must not be empty"}
	}
	next := make([]string, 0, len(*list)+1)
	next = append(next, *list...)
	*p.Dimension(d) = append(next, factor)
	return p, nil
}

// DeletePestelFactor removes the factor at index i of dimension d.
func DeletePestelFactor(p types.Pestel, d types.PestelDimension, i int) (types.Pestel, error) {
	list := p.Dimension(d)
	if list == nil {
		return p, &FieldError{Field: "dimension", Message: string(d)}
	}
	if i < 0 || i >= len(*list) {
		return p, &IndexError{List: string(d), Index: i, Len: len(*list)}
	}
	next := make([]string, 0, len(*list)-1)
	next = append(next, (*list)[:i]...)
	next = append(next, (*list)[i+1:]...)
	*p.Dimension(d) = next
	return p, nil
}

// SetPorterForce updates the force with a matching name, or appends it.
func SetPorterForce(p types.Porter, force types.PorterForce) (types.Porter, error) {
	force.Force = strings.TrimSpace(force.Force)
	if force.Force == "" {
		return p, &FieldError{Field: "force", Message: "must not be empty"}
	}
	next := append([]types.PorterForce{}, p.Forces...)
	for i := range next {
		if strings.EqualFold(next[i].Force, force.Force) {
			next[i] = force
			p.Forces = next
			return p, nil
		}
	}
	p.Forces = append(next, force)
	return p, nil
}

// DeletePorterForce removes the force named name.
func DeletePorterForce(p types.Porter, name string) (types.Porter, error) {
	next := make([]types.PorterForce, 0, len(p.Forces))
	found := false
	for _, f := range p.Forces {
		if strings.EqualFold(f.Force, strings.TrimSpace(name)) {
			found = true
			continue
		}
		next = append(next, f)
	}
	if !found {
		return p, &FieldError{Field: "force", Message: "not found: " + name}
	}
	p.Forces = next
	return p, nil
}
