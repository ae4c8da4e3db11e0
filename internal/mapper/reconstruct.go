package mapper

// Reconstruct resolves a proposed mapping against the raw user data,
// producing the final slot->value assignment. Per entry: nil means the
// model found no match and the slot is skipped; otherwise the expression
// is evaluated, falling back to a direct label lookup when it does not
// parse as an expression. Slots whose resolved value is empty are
// omitted so the filler never stamps blank strings.
func Reconstruct(mapping Mapping, userData map[string]string) map[string]string {
	values := make(map[string]string, len(mapping))

	for slot, expr := range mapping {
		if expr == nil {
			continue
		}

		v, err := EvalConcat(*expr, userData)
		if err != nil {
			v = userData[*expr]
		}
		if v == "" {
			continue
		}
		values[slot] = v
	}

	return values
}
