// internal/output/text.go
package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"recgroup/internal/engine"
)

// WriteText prints the header line followed by one block per group:
//
//	Group <n>
//	<member>
//	...
//	<blank>
//
// Groups are numbered from 1 in the order given. Members are printed sorted.
func WriteText(w io.Writer, groups []engine.Group) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s%d\n\n", HeaderPrefix, len(groups))
	for i, g := range groups {
		fmt.Fprintf(bw, "Group %d\n", i+1)
		for _, m := range sortedCopy(g.Members) {
			bw.WriteString(m)
			bw.WriteByte('\n')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func sortedCopy(ms []string) []string {
	if sort.StringsAreSorted(ms) {
		return ms
	}
	out := append([]string(nil), ms...)
	sort.Strings(out)
	return out
}
