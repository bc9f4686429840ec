package item

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// deepMerge combines a source document into a target document.
// Objects merge key by key; a key on one side only is taken as-is, a
// key on both sides recurses. Lists keep every distinct element from
// both sides, target's elements first, with the source version of a
// duplicate overriding the target's. Any other type mismatch resolves
// to the source value.
//
// The returned count is the number of object keys present on both
// sides whose values were not already equal.
func deepMerge(src, dst any) (any, int) {
	srcMap, srcIsMap := src.(map[string]any)
	dstMap, dstIsMap := dst.(map[string]any)
	if srcIsMap && dstIsMap {
		return mergeMaps(srcMap, dstMap)
	}

	srcList, srcIsList := src.([]any)
	dstList, dstIsList := dst.([]any)
	if srcIsList && dstIsList {
		return mergeLists(srcList, dstList), 0
	}

	return src, 0
}

func mergeMaps(src, dst map[string]any) (map[string]any, int) {
	merged := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}

	conflicts := 0
	for k, sv := range src {
		dv, both := dst[k]
		if !both {
			merged[k] = sv
			continue
		}
		if reflect.DeepEqual(sv, dv) {
			continue
		}

		mv, c := deepMerge(sv, dv)
		merged[k] = mv
		conflicts += c + 1
	}

	return merged, conflicts
}

// mergeLists dedupes primitives by literal value and composites by a
// canonical key-order-independent serialization. Distinct entries that
// serialize identically collapse into one; this mirrors the observed
// merge behavior and is deliberate.
func mergeLists(src, dst []any) []any {
	out := make([]any, 0, len(dst)+len(src))
	index := make(map[string]int, len(dst))

	insert := func(v any) {
		key := canonicalKey(v)
		if i, ok := index[key]; ok {
			out[i] = v
			return
		}
		index[key] = len(out)
		out = append(out, v)
	}

	for _, v := range dst {
		insert(v)
	}
	for _, v := range src {
		insert(v)
	}

	return out
}

// canonicalKey serializes a value with object keys sorted, so
// structurally equal composites share one key.
func canonicalKey(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(raw)
}
