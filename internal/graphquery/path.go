package graphquery

import (
	"fmt"
	"strings"
)

// hopClause joins consecutive anchors with a variable-length
// relationship of one to four edges.
const hopClause = "-[*1..4]->"

// BuildPath renders resolved node identifiers as a Cypher-style path
// query, requesting at most limit paths:
//
//	MATCH P=({id: "a"})-[*1..4]->({id: "b"}) RETURN P LIMIT 10
//
// A single identifier degenerates to a bare anchor with no hop clause;
// the traversal engine answers it with the anchor's own node.
func BuildPath(ids []string, limit int) string {
	anchors := make([]string, len(ids))
	for i, id := range ids {
		anchors[i] = fmt.Sprintf("({id: %q})", id)
	}
	return fmt.Sprintf("MATCH P=%s RETURN P LIMIT %d", strings.Join(anchors, hopClause), limit)
}
