package report

// SignaturesKey is the reserved document key holding the ordered match
// list. A processing module fragment stored under it is overwritten when
// matches are attached.
const SignaturesKey = "signatures"

// Document is the shared results container: module result keys mapping to
// module-defined structured values. Only the Processor mutates it.
type Document map[string]interface{}

// Snapshot returns a deep copy of the document. Signatures evaluate
// against snapshots so that a misbehaving signature cannot corrupt the
// view handed to the ones after it.
func (d Document) Snapshot() Document {
	if d == nil {
		return Document{}
	}
	return cloneValue(d).(map[string]interface{})
}

func cloneValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case Document:
		return cloneMap(typed)
	case map[string]interface{}:
		return cloneMap(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(typed))
		copy(out, typed)
		return out
	case []map[string]interface{}:
		out := make([]map[string]interface{}, len(typed))
		for i, item := range typed {
			out[i] = cloneMap(item)
		}
		return out
	default:
		// Scalars and anything module-defined beyond the JSON shapes above
		// are shared; modules hand their fragments over and must not keep
		// mutating them.
		return v
	}
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// Match is the immutable snapshot of a signature's metadata taken at match
// time. Matches exist only inside the document's signatures list.
type Match struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Severity    int         `json:"severity"`
	References  []string    `json:"references"`
	Data        interface{} `json:"data"`
	Alert       bool        `json:"alert"`
}
