package project

import "regexp"

// refPattern matches ref('model_name') and ref("model_name") calls in model
// SQL, including dotted names.
var refPattern = regexp.MustCompile(`ref\(\s*['"]([\w.]+)['"]\s*\)`)

// ExtractRefs returns the model names referenced by the given SQL, in order
// of appearance. Duplicates are preserved; the graph builder collapses them.
func ExtractRefs(sql string) []string {
	matches := refPattern.FindAllStringSubmatch(sql, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}
