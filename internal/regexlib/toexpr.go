package regexlib

// ToExpr turns an automaton back into an equivalent expression by state
// elimination (McNaughton-Yamada). Two extra states are added: a source with
// an epsilon transfer to the start and a sink reached by epsilon from every
// accepting state. paths[i][j] is the expression for the words leading from
// i to j through the states eliminated so far, nil when there are none.
// Once every original state is eliminated, paths[source][sink] is the
// answer; it is nil when the automaton accepts nothing.
func ToExpr(d *FA) *Expr {
	if d == nil || d.Len() == 0 {
		return nil
	}
	n := d.Len()
	source, sink := n, n+1
	paths := make([][]*Expr, n+2)
	for i := range paths {
		paths[i] = make([]*Expr, n+2)
	}
	for _, e := range d.Edges {
		label := eps()
		if e.Label != epsilonLabel {
			label = atom(e.Label)
		}
		paths[e.From][e.To] = alt(paths[e.From][e.To], label)
	}
	paths[source][d.Start] = eps()
	for _, f := range d.Ends {
		paths[f][sink] = eps()
	}

	for k := range n {
		loop := paths[k][k]
		for i := k + 1; i < n+2; i++ {
			if paths[i][k] == nil {
				continue
			}
			for j := k + 1; j < n+2; j++ {
				if paths[k][j] == nil {
					continue
				}
				via := []*Expr{paths[i][k]}
				if loop != nil {
					via = append(via, star(loop))
				}
				via = append(via, paths[k][j])
				paths[i][j] = alt(paths[i][j], concat(via))
			}
		}
	}
	return paths[source][sink]
}

func alt(a, b *Expr) *Expr {
	if a == nil {
		return b
	}
	return union([]*Expr{a, b})
}
